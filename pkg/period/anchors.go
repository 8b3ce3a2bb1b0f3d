package period

import (
	"context"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

// SubscriptionStatus is the engine's view of an external subscription state.
// Providers map their vendor-specific statuses onto these values.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	// StatusGrace covers past-due subscriptions still inside the provider's
	// payment grace window.
	StatusGrace    SubscriptionStatus = "grace"
	StatusInactive SubscriptionStatus = "inactive"
)

// Usable reports whether the subscription's billing anchors should drive
// window calculation.
func (s SubscriptionStatus) Usable() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusGrace:
		return true
	}
	return false
}

// Anchors are the read-only subscription outputs the calculator consumes.
type Anchors struct {
	Status      SubscriptionStatus
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedAt   time.Time
}

// hasPeriod reports whether the provider exposed a well-formed billing period.
func (a Anchors) hasPeriod() bool {
	return !a.PeriodStart.IsZero() && !a.PeriodEnd.IsZero() && a.PeriodEnd.After(a.PeriodStart)
}

// AnchorProvider resolves subscription anchors for an owner.
// Returning (nil, nil) means "no subscription": the calculator falls back to
// calendar windows, it never treats absence as an error.
type AnchorProvider interface {
	Anchors(ctx context.Context, owner entitlement.Owner) (*Anchors, error)
}

// StaticAnchors is a map-backed AnchorProvider for tests and self-hosted
// installations without a billing provider.
type StaticAnchors map[entitlement.Owner]Anchors

func (s StaticAnchors) Anchors(ctx context.Context, owner entitlement.Owner) (*Anchors, error) {
	a, ok := s[owner]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
