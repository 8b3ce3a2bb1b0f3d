package grace

import (
	"context"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

// Events is the external sink for enforcement transitions. Each callback is
// invoked at most once per logical occurrence; the engine does not retry
// delivery and guarantees no ordering across unrelated keys.
type Events interface {
	OnWarning(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64)
	OnGraceStart(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, graceEndsAt time.Time)
	OnBlock(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey)
}

// EventFuncs adapts plain functions to the Events interface. Nil fields are
// skipped, so callers wire only the callbacks they care about.
type EventFuncs struct {
	Warning    func(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64)
	GraceStart func(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, graceEndsAt time.Time)
	Block      func(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey)
}

func (e EventFuncs) OnWarning(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64) {
	if e.Warning != nil {
		e.Warning(ctx, owner, key, threshold)
	}
}

func (e EventFuncs) OnGraceStart(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, graceEndsAt time.Time) {
	if e.GraceStart != nil {
		e.GraceStart(ctx, owner, key, graceEndsAt)
	}
}

func (e EventFuncs) OnBlock(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) {
	if e.Block != nil {
		e.Block(ctx, owner, key)
	}
}

// NopEvents discards all events.
var NopEvents Events = EventFuncs{}
