package subscription_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/subscription"
)

func ownerSubID(id string) subscription.SubscriptionIDFunc {
	return func(ctx context.Context, owner entitlement.Owner) (string, error) {
		return id, nil
	}
}

func TestNewPaddleAnchors(t *testing.T) {
	t.Parallel()

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()

		_, err := subscription.NewPaddleAnchors(subscription.PaddleConfig{}, ownerSubID(""))
		assert.ErrorIs(t, err, subscription.ErrMissingAPIKey)
	})

	t.Run("nil subscription id func", func(t *testing.T) {
		t.Parallel()

		_, err := subscription.NewPaddleAnchors(subscription.PaddleConfig{APIKey: "pdl_test_key"}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown environment", func(t *testing.T) {
		t.Parallel()

		cfg := subscription.PaddleConfig{APIKey: "pdl_test_key", Environment: "local"}
		_, err := subscription.NewPaddleAnchors(cfg, ownerSubID(""))
		assert.ErrorIs(t, err, subscription.ErrInvalidProviderEnvironment)
	})

	t.Run("sandbox environment", func(t *testing.T) {
		t.Parallel()

		cfg := subscription.PaddleConfig{APIKey: "pdl_sdbx_key", Environment: "sandbox"}
		provider, err := subscription.NewPaddleAnchors(cfg, ownerSubID(""))
		require.NoError(t, err)
		assert.NotNil(t, provider)
	})

	t.Run("environment defaults to production", func(t *testing.T) {
		t.Parallel()

		cfg := subscription.PaddleConfig{APIKey: "pdl_live_key"}
		provider, err := subscription.NewPaddleAnchors(cfg, ownerSubID(""))
		require.NoError(t, err)
		assert.NotNil(t, provider)
	})
}

func TestPaddleAnchorsNoSubscription(t *testing.T) {
	t.Parallel()

	cfg := subscription.PaddleConfig{APIKey: "pdl_test_key"}
	provider, err := subscription.NewPaddleAnchors(cfg, ownerSubID(""))
	require.NoError(t, err)

	// An empty subscription ID short-circuits before any API call.
	anchors, err := provider.Anchors(context.Background(), entitlement.Owner{})
	require.NoError(t, err)
	assert.Nil(t, anchors, "owners without a subscription yield no anchors")
}
