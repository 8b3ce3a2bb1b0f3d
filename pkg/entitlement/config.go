package entitlement

import (
	"errors"
	"fmt"
	"time"
)

// PeriodKind selects how a periodic allowance window is calculated.
type PeriodKind string

const (
	// PeriodBillingCycle uses the owner's subscription billing period when one
	// is available, falling back to a rolling month anchored to the
	// subscription creation date, then to the calendar month.
	PeriodBillingCycle PeriodKind = "billing_cycle"
	// PeriodCalendarMonth is [first of month, first of next month), UTC.
	PeriodCalendarMonth PeriodKind = "calendar_month"
	// PeriodCalendarWeek is a Monday-anchored calendar week, UTC.
	PeriodCalendarWeek PeriodKind = "calendar_week"
	// PeriodCalendarDay is [midnight, next midnight), UTC.
	PeriodCalendarDay PeriodKind = "calendar_day"
	// PeriodFixedDuration starts at the beginning of the current day and
	// extends Duration forward. Calendar-relative only, never re-anchored to a
	// subscription.
	PeriodFixedDuration PeriodKind = "fixed_duration"
	// PeriodCustom delegates window calculation to the spec's Window func.
	PeriodCustom PeriodKind = "custom"
)

// WindowFunc produces a half-open [start, end) window for an owner.
// Used with PeriodCustom.
type WindowFunc func(owner Owner) (start, end time.Time)

// PeriodSpec describes the recurring window of a periodic allowance.
type PeriodSpec struct {
	Kind     PeriodKind
	Duration time.Duration // required for PeriodFixedDuration
	Window   WindowFunc    // required for PeriodCustom
}

// Monthly is a convenience PeriodSpec for billing-cycle allowances.
func Monthly() *PeriodSpec {
	return &PeriodSpec{Kind: PeriodBillingCycle}
}

// Every returns a fixed-duration PeriodSpec (e.g. Every(14 * 24 * time.Hour)).
func Every(d time.Duration) *PeriodSpec {
	return &PeriodSpec{Kind: PeriodFixedDuration, Duration: d}
}

func (p *PeriodSpec) validate() error {
	switch p.Kind {
	case PeriodBillingCycle, PeriodCalendarMonth, PeriodCalendarWeek, PeriodCalendarDay:
		if p.Window != nil {
			return fmt.Errorf("period kind %q must not carry a custom window func", p.Kind)
		}
	case PeriodFixedDuration:
		if p.Duration <= 0 {
			return fmt.Errorf("fixed duration period requires a positive duration, got %s", p.Duration)
		}
		if p.Window != nil {
			return fmt.Errorf("period kind %q must not carry a custom window func", p.Kind)
		}
	case PeriodCustom:
		if p.Window == nil {
			return errors.New("custom period requires a window func")
		}
	default:
		return fmt.Errorf("unknown period kind %q", p.Kind)
	}
	return nil
}

// ScopePart is one element of a CountScope composition. Exactly one of the
// fields is set per part.
type ScopePart struct {
	// Name references a filter registered by the counter capability.
	Name string
	// Where narrows the count by column/attribute equality.
	Where map[string]any
	// Filter is an arbitrary predicate the counter capability knows how to
	// apply. Its concrete type is a contract between the plan author and the
	// registered counter, not interpreted by the engine.
	Filter any
}

// CountScope restricts which owned rows count toward a persistent cap.
// Scopes compose left to right; a plan-level scope overrides any default
// scope the counter capability applies on its own.
type CountScope struct {
	parts []ScopePart
}

// Named returns a scope referencing a filter by name.
func Named(name string) *CountScope {
	return &CountScope{parts: []ScopePart{{Name: name}}}
}

// Where returns a scope constraining the count by attribute equality.
func Where(conditions map[string]any) *CountScope {
	return &CountScope{parts: []ScopePart{{Where: conditions}}}
}

// Filter returns a scope applying a counter-defined predicate.
func Filter(predicate any) *CountScope {
	return &CountScope{parts: []ScopePart{{Filter: predicate}}}
}

// Compose chains scopes left to right into a single scope.
func Compose(scopes ...*CountScope) *CountScope {
	combined := &CountScope{}
	for _, s := range scopes {
		if s == nil {
			continue
		}
		combined.parts = append(combined.parts, s.parts...)
	}
	return combined
}

// Parts returns the ordered scope parts for the counter capability to apply.
func (s *CountScope) Parts() []ScopePart {
	if s == nil {
		return nil
	}
	return s.parts
}

func (s *CountScope) validate() error {
	if len(s.parts) == 0 {
		return errors.New("count scope must contain at least one part")
	}
	for i, part := range s.parts {
		set := 0
		if part.Name != "" {
			set++
		}
		if part.Where != nil {
			set++
		}
		if part.Filter != nil {
			set++
		}
		if set != 1 {
			return fmt.Errorf("count scope part %d must set exactly one of name, where, filter", i)
		}
	}
	return nil
}

// LimitConfig describes a single limit within a plan.
type LimitConfig struct {
	// Amount is the cap, or Unlimited.
	Amount int64
	// Policy decides behavior once the cap is reached.
	Policy AfterLimitPolicy
	// GracePeriod is the overage window for GraceThenBlock.
	GracePeriod time.Duration
	// WarnThresholds are ascending fractions in (0,1] of Amount at which
	// warnings fire.
	WarnThresholds []float64
	// Period, when set, makes this a periodic allowance backed by windowed
	// counters instead of a live count.
	Period *PeriodSpec
	// Scope optionally narrows live counting for persistent caps.
	// Disallowed together with Period.
	Scope *CountScope
}

// IsUnlimited reports whether the limit has no cap.
func (c LimitConfig) IsUnlimited() bool {
	return c.Amount == Unlimited
}

// IsPeriodic reports whether usage is counted within recurring windows.
func (c LimitConfig) IsPeriodic() bool {
	return c.Period != nil
}

// HighestThreshold returns the largest configured warn threshold, or 0 when
// none are configured.
func (c LimitConfig) HighestThreshold() float64 {
	if len(c.WarnThresholds) == 0 {
		return 0
	}
	return c.WarnThresholds[len(c.WarnThresholds)-1]
}

func (c LimitConfig) validate() error {
	if c.Amount < 0 && c.Amount != Unlimited {
		return fmt.Errorf("amount must be non-negative or Unlimited, got %d", c.Amount)
	}
	if !c.Policy.valid() {
		return fmt.Errorf("unknown after-limit policy %q", c.Policy)
	}
	if c.GracePeriod < 0 {
		return fmt.Errorf("grace period must be non-negative, got %s", c.GracePeriod)
	}
	if c.GracePeriod > 0 && c.Policy != GraceThenBlock {
		return fmt.Errorf("grace period is only meaningful with policy %q", GraceThenBlock)
	}
	if c.Period != nil && c.Scope != nil {
		return errors.New("count scope cannot be combined with a period spec")
	}
	if c.Period != nil {
		if err := c.Period.validate(); err != nil {
			return err
		}
	}
	if c.Scope != nil {
		if err := c.Scope.validate(); err != nil {
			return err
		}
	}
	prev := 0.0
	for _, t := range c.WarnThresholds {
		if t <= 0 || t > 1 {
			return fmt.Errorf("warn threshold %v out of range (0,1]", t)
		}
		if t <= prev {
			return fmt.Errorf("warn thresholds must be strictly ascending, got %v after %v", t, prev)
		}
		prev = t
	}
	return nil
}
