package usage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
	"github.com/dmitrymomot/quotaguard/pkg/usage"
)

func marchWindow() period.Window {
	return period.Window{
		Start: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	owner := entitlement.NewOwner("user", uuid.New())
	key := entitlement.LimitKey("emails")

	t.Run("absent record reads as zero", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		rec, err := store.Get(context.Background(), owner, key, marchWindow())
		require.NoError(t, err)
		assert.Zero(t, rec.Used)
		assert.Equal(t, owner, rec.Owner)
		assert.Equal(t, key, rec.Key)
	})

	t.Run("increment accumulates", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		fixed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
		store.SetClock(func() time.Time { return fixed })

		w := marchWindow()
		rec, err := store.Increment(context.Background(), owner, key, w, 3)
		require.NoError(t, err)
		assert.EqualValues(t, 3, rec.Used)
		assert.Equal(t, fixed, rec.LastUsedAt)

		rec, err = store.Increment(context.Background(), owner, key, w, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 5, rec.Used)

		rec, err = store.Get(context.Background(), owner, key, w)
		require.NoError(t, err)
		assert.EqualValues(t, 5, rec.Used)
	})

	t.Run("windows are independent", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		march := marchWindow()
		april := period.Window{Start: march.End, End: march.End.AddDate(0, 1, 0)}

		_, err := store.Increment(context.Background(), owner, key, march, 10)
		require.NoError(t, err)

		rec, err := store.Get(context.Background(), owner, key, april)
		require.NoError(t, err)
		assert.Zero(t, rec.Used, "a new window starts from zero")
	})

	t.Run("non-positive increments rejected", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		_, err := store.Increment(context.Background(), owner, key, marchWindow(), 0)
		assert.ErrorIs(t, err, usage.ErrInvalidIncrement)

		_, err = store.Increment(context.Background(), owner, key, marchWindow(), -5)
		assert.ErrorIs(t, err, usage.ErrInvalidIncrement)
	})

	t.Run("concurrent increments are atomic", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		w := marchWindow()

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(context.Background(), owner, key, w, 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		rec, err := store.Get(context.Background(), owner, key, w)
		require.NoError(t, err)
		assert.EqualValues(t, 50, rec.Used)
	})
}

func TestCounterRegistry(t *testing.T) {
	t.Parallel()

	t.Run("register and lookup", func(t *testing.T) {
		t.Parallel()

		reg := usage.NewRegistry()
		reg.Register("projects", func(ctx context.Context, o entitlement.Owner, s *entitlement.CountScope) (int64, error) {
			return 7, nil
		})

		fn, ok := reg["projects"]
		require.True(t, ok)
		n, err := fn(context.Background(), entitlement.Owner{}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 7, n)
	})

	t.Run("nil counter panics", func(t *testing.T) {
		t.Parallel()

		reg := usage.NewRegistry()
		assert.Panics(t, func() {
			reg.Register("projects", nil)
		})
	})
}
