package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Calculator produces allowance windows for periodic limits.
type Calculator struct {
	anchors AnchorProvider
}

// NewCalculator returns a Calculator. The anchor provider may be nil, in
// which case billing-cycle specs resolve to calendar months.
func NewCalculator(anchors AnchorProvider) *Calculator {
	return &Calculator{anchors: anchors}
}

// Window returns the current allowance window for the spec at now.
func (c *Calculator) Window(ctx context.Context, owner entitlement.Owner, spec *entitlement.PeriodSpec, now time.Time) (Window, error) {
	if spec == nil {
		return Window{}, ErrMissingPeriodSpec
	}
	now = now.UTC()

	switch spec.Kind {
	case entitlement.PeriodBillingCycle:
		return c.billingCycle(ctx, owner, now), nil
	case entitlement.PeriodCalendarMonth:
		return calendarMonth(now), nil
	case entitlement.PeriodCalendarWeek:
		return calendarWeek(now), nil
	case entitlement.PeriodCalendarDay:
		return calendarDay(now), nil
	case entitlement.PeriodFixedDuration:
		start := beginningOfDay(now)
		return Window{Start: start, End: start.Add(spec.Duration)}, nil
	case entitlement.PeriodCustom:
		return customWindow(owner, spec)
	default:
		return Window{}, errors.Join(ErrUnknownPeriodKind, fmt.Errorf("period kind %q", spec.Kind))
	}
}

// billingCycle prefers the provider's billing period verbatim, then a rolling
// month anchored to the subscription creation date, then the calendar month.
// Provider failures and malformed anchors degrade the same way absence does.
func (c *Calculator) billingCycle(ctx context.Context, owner entitlement.Owner, now time.Time) Window {
	if c.anchors == nil {
		return calendarMonth(now)
	}

	anchors, err := c.anchors.Anchors(ctx, owner)
	if err != nil || anchors == nil || !anchors.Status.Usable() {
		return calendarMonth(now)
	}

	if anchors.hasPeriod() {
		return Window{Start: anchors.PeriodStart.UTC(), End: anchors.PeriodEnd.UTC()}
	}

	if !anchors.CreatedAt.IsZero() {
		return anchoredMonth(anchors.CreatedAt.UTC(), now)
	}

	return calendarMonth(now)
}

func customWindow(owner entitlement.Owner, spec *entitlement.PeriodSpec) (Window, error) {
	if spec.Window == nil {
		return Window{}, errors.Join(ErrInvalidPeriodWindow, errors.New("custom period has no window func"))
	}
	start, end := spec.Window(owner)
	if start.IsZero() || end.IsZero() {
		return Window{}, errors.Join(ErrInvalidPeriodWindow, errors.New("window func returned a zero timestamp"))
	}
	if !end.After(start) {
		return Window{}, errors.Join(ErrInvalidPeriodWindow,
			fmt.Errorf("window end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// anchoredMonth computes the monthly window containing now, anchored to the
// creation timestamp's day-of-month and clock time. Anchors past a month's
// length clamp to its last day, so an anchor of the 31st rolls to the 30th or
// 28th/29th in shorter months.
func anchoredMonth(anchor, now time.Time) Window {
	year, month, _ := now.Date()
	start := anchorInMonth(year, month, anchor)
	if start.After(now) {
		year, month = prevMonth(year, month)
		start = anchorInMonth(year, month, anchor)
	}
	nextYear, next := nextMonth(year, month)
	return Window{Start: start, End: anchorInMonth(nextYear, next, anchor)}
}

func anchorInMonth(year int, month time.Month, anchor time.Time) time.Time {
	day := min(anchor.Day(), daysInMonth(year, month))
	hour, minute, sec := anchor.Clock()
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func prevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func calendarMonth(now time.Time) Window {
	year, month, _ := now.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// calendarWeek anchors weeks to Monday (ISO 8601).
func calendarWeek(now time.Time) Window {
	day := beginningOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	start := day.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

func calendarDay(now time.Time) Window {
	start := beginningOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

func beginningOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
