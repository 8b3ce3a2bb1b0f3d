package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

// PaddleConfig holds configuration for the Paddle anchor provider.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// SubscriptionIDFunc maps an owner to its Paddle subscription ID. Returning
// ("", nil) means the owner has no subscription, which is not an error: the
// period calculator falls back to calendar windows.
type SubscriptionIDFunc func(ctx context.Context, owner entitlement.Owner) (string, error)

// PaddleAnchors implements period.AnchorProvider over the Paddle API.
type PaddleAnchors struct {
	client *paddle.SDK
	subID  SubscriptionIDFunc
}

// NewPaddleAnchors creates a Paddle-backed anchor provider. The subID func is
// usually a lookup into the application's own subscription table, where the
// provider's subscription ID was stored at checkout time.
func NewPaddleAnchors(config PaddleConfig, subID SubscriptionIDFunc) (*PaddleAnchors, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if subID == nil {
		return nil, errors.New("subscription ID func is required")
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, errors.Join(ErrInvalidProviderEnvironment,
			fmt.Errorf("environment %q", config.Environment))
	}
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	return &PaddleAnchors{client: client, subID: subID}, nil
}

// Anchors fetches the owner's subscription and maps it to period anchors.
// Owners without a subscription resolve to (nil, nil).
func (p *PaddleAnchors) Anchors(ctx context.Context, owner entitlement.Owner) (*period.Anchors, error) {
	subscriptionID, err := p.subID(ctx, owner)
	if err != nil {
		return nil, err
	}
	if subscriptionID == "" {
		return nil, nil
	}

	sub, err := p.client.SubscriptionsClient.GetSubscription(ctx, &paddle.GetSubscriptionRequest{
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	anchors := &period.Anchors{
		Status:    mapPaddleStatus(sub.Status),
		CreatedAt: parsePaddleTime(sub.CreatedAt),
	}
	if sub.CurrentBillingPeriod != nil {
		anchors.PeriodStart = parsePaddleTime(sub.CurrentBillingPeriod.StartsAt)
		anchors.PeriodEnd = parsePaddleTime(sub.CurrentBillingPeriod.EndsAt)
	}
	return anchors, nil
}

func mapPaddleStatus(status paddle.SubscriptionStatus) period.SubscriptionStatus {
	switch status {
	case paddle.SubscriptionStatusActive:
		return period.StatusActive
	case paddle.SubscriptionStatusTrialing:
		return period.StatusTrialing
	case paddle.SubscriptionStatusPastDue:
		// Paddle keeps past-due subscriptions alive through its dunning
		// window, which maps onto the engine's grace status.
		return period.StatusGrace
	default:
		return period.StatusInactive
	}
}

// parsePaddleTime parses Paddle's RFC 3339 timestamps, returning the zero
// time for empty or malformed values so the calculator's fallbacks apply.
func parsePaddleTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
