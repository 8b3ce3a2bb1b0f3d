package period_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

func utc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestCalculatorCalendarWindows(t *testing.T) {
	t.Parallel()

	owner := entitlement.NewOwner("user", uuid.New())
	calc := period.NewCalculator(nil)

	tests := []struct {
		name      string
		spec      *entitlement.PeriodSpec
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "calendar month",
			spec:      &entitlement.PeriodSpec{Kind: entitlement.PeriodCalendarMonth},
			now:       utc(2026, time.March, 15, 10, 30),
			wantStart: utc(2026, time.March, 1, 0, 0),
			wantEnd:   utc(2026, time.April, 1, 0, 0),
		},
		{
			name:      "calendar week starts Monday",
			spec:      &entitlement.PeriodSpec{Kind: entitlement.PeriodCalendarWeek},
			now:       utc(2026, time.March, 15, 10, 30), // a Sunday
			wantStart: utc(2026, time.March, 9, 0, 0),
			wantEnd:   utc(2026, time.March, 16, 0, 0),
		},
		{
			name:      "calendar week on Monday itself",
			spec:      &entitlement.PeriodSpec{Kind: entitlement.PeriodCalendarWeek},
			now:       utc(2026, time.March, 9, 0, 0),
			wantStart: utc(2026, time.March, 9, 0, 0),
			wantEnd:   utc(2026, time.March, 16, 0, 0),
		},
		{
			name:      "calendar day",
			spec:      &entitlement.PeriodSpec{Kind: entitlement.PeriodCalendarDay},
			now:       utc(2026, time.March, 15, 23, 59),
			wantStart: utc(2026, time.March, 15, 0, 0),
			wantEnd:   utc(2026, time.March, 16, 0, 0),
		},
		{
			name:      "fixed duration from start of day",
			spec:      entitlement.Every(14 * 24 * time.Hour),
			now:       utc(2026, time.March, 15, 18, 0),
			wantStart: utc(2026, time.March, 15, 0, 0),
			wantEnd:   utc(2026, time.March, 29, 0, 0),
		},
		{
			name:      "billing cycle without provider falls back to calendar month",
			spec:      entitlement.Monthly(),
			now:       utc(2026, time.March, 15, 10, 30),
			wantStart: utc(2026, time.March, 1, 0, 0),
			wantEnd:   utc(2026, time.April, 1, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, err := calc.Window(context.Background(), owner, tt.spec, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
		})
	}
}

func TestCalculatorBillingCycle(t *testing.T) {
	t.Parallel()

	owner := entitlement.NewOwner("user", uuid.New())
	now := utc(2026, time.March, 15, 12, 0)

	t.Run("uses provider period verbatim", func(t *testing.T) {
		t.Parallel()

		start := utc(2026, time.February, 20, 9, 15)
		end := utc(2026, time.March, 20, 9, 15)
		calc := period.NewCalculator(period.StaticAnchors{
			owner: {Status: period.StatusActive, PeriodStart: start, PeriodEnd: end},
		})

		w, err := calc.Window(context.Background(), owner, entitlement.Monthly(), now)
		require.NoError(t, err)
		assert.Equal(t, start, w.Start)
		assert.Equal(t, end, w.End)
	})

	t.Run("anchors to creation date when period is missing", func(t *testing.T) {
		t.Parallel()

		calc := period.NewCalculator(period.StaticAnchors{
			owner: {Status: period.StatusActive, CreatedAt: utc(2025, time.November, 20, 8, 30)},
		})

		w, err := calc.Window(context.Background(), owner, entitlement.Monthly(), now)
		require.NoError(t, err)
		assert.Equal(t, utc(2026, time.February, 20, 8, 30), w.Start)
		assert.Equal(t, utc(2026, time.March, 20, 8, 30), w.End)
	})

	t.Run("clamps anchor day in short months", func(t *testing.T) {
		t.Parallel()

		calc := period.NewCalculator(period.StaticAnchors{
			owner: {Status: period.StatusActive, CreatedAt: utc(2025, time.October, 31, 0, 0)},
		})

		// Mid February: January 31 anchor clamps to February 28 in 2026.
		w, err := calc.Window(context.Background(), owner, entitlement.Monthly(), utc(2026, time.February, 10, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, utc(2026, time.January, 31, 0, 0), w.Start)
		assert.Equal(t, utc(2026, time.February, 28, 0, 0), w.End)
	})

	t.Run("inactive subscription falls back to calendar month", func(t *testing.T) {
		t.Parallel()

		calc := period.NewCalculator(period.StaticAnchors{
			owner: {
				Status:      period.StatusInactive,
				PeriodStart: utc(2026, time.February, 20, 0, 0),
				PeriodEnd:   utc(2026, time.March, 20, 0, 0),
			},
		})

		w, err := calc.Window(context.Background(), owner, entitlement.Monthly(), now)
		require.NoError(t, err)
		assert.Equal(t, utc(2026, time.March, 1, 0, 0), w.Start)
	})

	t.Run("provider error falls back to calendar month", func(t *testing.T) {
		t.Parallel()

		calc := period.NewCalculator(anchorProviderFunc(func(ctx context.Context, o entitlement.Owner) (*period.Anchors, error) {
			return nil, errors.New("billing api down")
		}))

		w, err := calc.Window(context.Background(), owner, entitlement.Monthly(), now)
		require.NoError(t, err)
		assert.Equal(t, utc(2026, time.March, 1, 0, 0), w.Start)
		assert.Equal(t, utc(2026, time.April, 1, 0, 0), w.End)
	})
}

func TestCalculatorCustomWindow(t *testing.T) {
	t.Parallel()

	owner := entitlement.NewOwner("user", uuid.New())
	calc := period.NewCalculator(nil)
	now := utc(2026, time.March, 15, 0, 0)

	t.Run("valid custom window", func(t *testing.T) {
		t.Parallel()

		spec := &entitlement.PeriodSpec{
			Kind: entitlement.PeriodCustom,
			Window: func(o entitlement.Owner) (time.Time, time.Time) {
				return utc(2026, time.March, 1, 0, 0), utc(2026, time.March, 20, 0, 0)
			},
		}
		w, err := calc.Window(context.Background(), owner, spec, now)
		require.NoError(t, err)
		assert.Equal(t, utc(2026, time.March, 1, 0, 0), w.Start)
	})

	t.Run("zero timestamp rejected", func(t *testing.T) {
		t.Parallel()

		spec := &entitlement.PeriodSpec{
			Kind: entitlement.PeriodCustom,
			Window: func(o entitlement.Owner) (time.Time, time.Time) {
				return time.Time{}, utc(2026, time.March, 20, 0, 0)
			},
		}
		_, err := calc.Window(context.Background(), owner, spec, now)
		assert.ErrorIs(t, err, period.ErrInvalidPeriodWindow)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		t.Parallel()

		spec := &entitlement.PeriodSpec{
			Kind: entitlement.PeriodCustom,
			Window: func(o entitlement.Owner) (time.Time, time.Time) {
				return utc(2026, time.March, 20, 0, 0), utc(2026, time.March, 1, 0, 0)
			},
		}
		_, err := calc.Window(context.Background(), owner, spec, now)
		assert.ErrorIs(t, err, period.ErrInvalidPeriodWindow)
	})

	t.Run("nil spec", func(t *testing.T) {
		t.Parallel()

		_, err := calc.Window(context.Background(), owner, nil, now)
		assert.ErrorIs(t, err, period.ErrMissingPeriodSpec)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		_, err := calc.Window(context.Background(), owner, &entitlement.PeriodSpec{Kind: "quarterly"}, now)
		assert.ErrorIs(t, err, period.ErrUnknownPeriodKind)
	})
}

func TestWindowContains(t *testing.T) {
	t.Parallel()

	w := period.Window{Start: utc(2026, time.March, 1, 0, 0), End: utc(2026, time.April, 1, 0, 0)}

	assert.True(t, w.Contains(w.Start), "window start is inclusive")
	assert.True(t, w.Contains(utc(2026, time.March, 15, 12, 0)))
	assert.False(t, w.Contains(w.End), "window end is exclusive")
	assert.False(t, w.Contains(utc(2026, time.February, 28, 23, 59)))
	assert.True(t, period.Window{}.IsZero())
}

type anchorProviderFunc func(ctx context.Context, owner entitlement.Owner) (*period.Anchors, error)

func (f anchorProviderFunc) Anchors(ctx context.Context, owner entitlement.Owner) (*period.Anchors, error) {
	return f(ctx, owner)
}
