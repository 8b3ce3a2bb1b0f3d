package grace

import (
	"context"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

// Store persists enforcement state. Implementations must enforce at-most-one
// record per (owner kind, owner id, limit key) at the storage layer, because
// concurrent writers from independent processes race to create it.
//
// The conditional mutations (SetExceeded, SetBlocked, SetWarning) report
// whether this caller won the transition; only the winner emits the
// corresponding event. They must be atomic compare-and-set operations
// (conditional UPDATE, row lock, or mutex), never read-modify-write.
type Store interface {
	// Get returns the state record, or nil when none exists.
	Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) (*State, error)

	// Create inserts a new record, returning ErrStateExists when a concurrent
	// writer inserted first.
	Create(ctx context.Context, state *State) error

	// SetExceeded records the cap crossing on an existing record iff no
	// exceed is recorded yet.
	SetExceeded(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, at time.Time, gracePeriod time.Duration) (won bool, err error)

	// SetBlocked records blocking iff exceeded and not yet blocked.
	SetBlocked(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, at time.Time) (won bool, err error)

	// SetWarning advances the last announced threshold iff the given
	// threshold is strictly greater than the recorded one.
	SetWarning(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64, at time.Time) (won bool, err error)

	// Delete removes the record unconditionally. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) error
}
