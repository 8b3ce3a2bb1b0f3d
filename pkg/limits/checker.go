package limits

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/grace"
	"github.com/dmitrymomot/quotaguard/pkg/period"
	"github.com/dmitrymomot/quotaguard/pkg/usage"
)

// Checker composes the engine components into the caller-facing query
// surface. Construct one per process and create an Evaluation per logical
// request with Eval.
type Checker struct {
	resolver *entitlement.Resolver
	counters usage.CounterRegistry
	records  usage.Store
	periods  *period.Calculator
	grace    *grace.Manager
	messages MessageFormatter
	log      *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCounters registers the counter capabilities for persistent caps.
func WithCounters(counters usage.CounterRegistry) CheckerOption {
	return func(c *Checker) {
		if counters != nil {
			c.counters = counters
		}
	}
}

// WithUsageStore sets the windowed counter store for periodic allowances.
func WithUsageStore(store usage.Store) CheckerOption {
	return func(c *Checker) {
		if store != nil {
			c.records = store
		}
	}
}

// WithPeriods sets the period calculator (and through it the subscription
// anchor provider). Defaults to a calculator without anchors.
func WithPeriods(calc *period.Calculator) CheckerOption {
	return func(c *Checker) {
		if calc != nil {
			c.periods = calc
		}
	}
}

// WithGrace sets the enforcement state machine. Defaults to a memory-backed
// manager with no event sink, which suits tests and single-process use only.
func WithGrace(manager *grace.Manager) CheckerOption {
	return func(c *Checker) {
		if manager != nil {
			c.grace = manager
		}
	}
}

// WithMessages sets the optional human-message formatting collaborator.
func WithMessages(f MessageFormatter) CheckerOption {
	return func(c *Checker) {
		c.messages = f
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}

// NewChecker returns a Checker resolving plans through the given resolver.
// Panics on a nil resolver.
func NewChecker(resolver *entitlement.Resolver, opts ...CheckerOption) *Checker {
	if resolver == nil {
		panic("limits: resolver cannot be nil")
	}
	c := &Checker{
		resolver: resolver,
		counters: usage.NewRegistry(),
		records:  usage.NewMemoryStore(),
		periods:  period.NewCalculator(nil),
		grace:    grace.NewManager(grace.NewMemoryStore()),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Eval returns a fresh per-request Evaluation for the owner.
func (c *Checker) Eval(ctx context.Context, owner entitlement.Owner) *Evaluation {
	return c.EvalAt(ctx, owner, time.Now())
}

// EvalAt is Eval with an explicit clock, for tests and replayed decisions.
func (c *Checker) EvalAt(ctx context.Context, owner entitlement.Owner, now time.Time) *Evaluation {
	return &Evaluation{
		checker:      c,
		owner:        owner,
		now:          now.UTC(),
		configs:      make(map[entitlement.LimitKey]*configEntry),
		usages:       make(map[entitlement.LimitKey]int64),
		windows:      make(map[entitlement.LimitKey]period.Window),
		states:       make(map[entitlement.LimitKey]*grace.State),
		statesLoaded: make(map[entitlement.LimitKey]bool),
	}
}

// Record consumes n units of a periodic allowance, creating the window's
// usage record on first use. Incrementing is the owning collaborator's call
// to make when a unit is actually consumed; Check does not consume.
// Persistent caps have no recorded usage (counting is live) and return an
// error here.
func (c *Checker) Record(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, n int64) (usage.Record, error) {
	return c.RecordAt(ctx, owner, key, n, time.Now())
}

// RecordAt is Record with an explicit clock.
func (c *Checker) RecordAt(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, n int64, now time.Time) (usage.Record, error) {
	plan, err := c.resolver.Resolve(ctx, owner)
	if err != nil {
		return usage.Record{}, err
	}
	cfg, ok := plan.Limit(key)
	if !ok || !cfg.IsPeriodic() {
		return usage.Record{}, errors.Join(usage.ErrFailedToIncrementUsage,
			errors.New("limit is not a periodic allowance"))
	}
	window, err := c.periods.Window(ctx, owner, cfg.Period, now)
	if err != nil {
		return usage.Record{}, err
	}
	return c.records.Increment(ctx, owner, key, window, n)
}

// Reset clears the enforcement state for one (owner, limit key).
// Administrative override: warnings, grace and block state all restart.
func (c *Checker) Reset(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) error {
	return c.grace.Reset(ctx, owner, key)
}
