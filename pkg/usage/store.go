package usage

import (
	"context"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

// Record is a windowed usage counter for one (owner, limit key, window).
// Used is monotone non-decreasing; consumption is append-only.
type Record struct {
	Owner      entitlement.Owner
	Key        entitlement.LimitKey
	Window     period.Window
	Used       int64
	LastUsedAt time.Time
}

// Store persists windowed usage records for periodic allowances.
type Store interface {
	// Get returns the record for the window. An absent record reads as a
	// zero-usage Record, not an error.
	Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window) (Record, error)

	// Increment atomically adds n units to the window's counter, creating the
	// record on first use. Concurrent first increments must not produce
	// duplicate records. n must be positive.
	Increment(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window, n int64) (Record, error)
}
