package grace

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 25 * time.Millisecond
)

// Manager drives the enforcement state machine over a Store, emitting each
// transition event exactly once no matter how many callers evaluate the same
// (owner, limit key) simultaneously.
//
// All operations take an explicit now and, for periodic limits, the current
// window start; a stamped record from an older window is discarded on read
// before any other logic runs.
type Manager struct {
	store  Store
	events Events
	log    *slog.Logger

	retryAttempts int
	retryBackoff  time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithEvents sets the event sink. Defaults to NopEvents.
func WithEvents(events Events) Option {
	return func(m *Manager) {
		if events != nil {
			m.events = events
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithRetry overrides the bounded write-conflict retry policy.
// Backoff grows linearly per attempt, like the storage connect helpers.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.retryAttempts = attempts
		}
		if backoff > 0 {
			m.retryBackoff = backoff
		}
	}
}

// NewManager returns a Manager over the store. Panics on a nil store: wiring
// the state machine without persistence is a programming error.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		panic("grace: store cannot be nil")
	}
	m := &Manager{
		store:         store,
		events:        NopEvents,
		log:           slog.Default(),
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the live state for the key, or nil when the owner is
// within limits. For periodic limits (windowStart non-nil) a record stamped
// with a different window is deleted and treated as absent: this lazy check
// is how enforcement resets at each new window, with no background sweep.
func (m *Manager) Current(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, windowStart *time.Time) (*State, error) {
	st, err := m.store.Get(ctx, owner, key)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}

	if windowStart != nil && st.staleFor(windowStart.UTC()) {
		if err := m.store.Delete(ctx, owner, key); err != nil {
			return nil, err
		}
		m.log.DebugContext(ctx, "discarded stale enforcement state",
			"owner", owner.String(), "limit_key", string(key), "window_start", windowStart.UTC())
		return nil, nil
	}
	return st, nil
}

// MarkExceeded records the first cap crossing and emits GraceStart exactly
// once with the grace deadline. First caller wins: later and concurrent
// callers observe the original ExceededAt, never refresh it. The grace
// duration is frozen on the record at exceed time.
func (m *Manager) MarkExceeded(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, gracePeriod time.Duration, windowStart *time.Time, now time.Time) (*State, error) {
	at := now.UTC()

	for attempt := range m.retryAttempts {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * m.retryBackoff)
		}

		st, err := m.Current(ctx, owner, key, windowStart)
		if err != nil {
			return nil, err
		}
		if st.Exceeded() {
			return st, nil
		}

		if st == nil {
			created := &State{
				Owner:       owner,
				Key:         key,
				ExceededAt:  &at,
				GracePeriod: gracePeriod,
				WindowStart: windowStamp(windowStart),
			}
			if err := m.store.Create(ctx, created); err != nil {
				if errors.Is(err, ErrStateExists) {
					continue // lost the insert race, re-read the winner's state
				}
				return nil, err
			}
			m.emitGraceStart(ctx, owner, key, created.GraceEndsAt())
			return created, nil
		}

		// Warning-only record exists; claim the exceed transition on it.
		won, err := m.store.SetExceeded(ctx, owner, key, at, gracePeriod)
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}
		st.ExceededAt = &at
		st.GracePeriod = gracePeriod
		m.emitGraceStart(ctx, owner, key, st.GraceEndsAt())
		return st, nil
	}

	return nil, ErrConflictRetryExhausted
}

// MarkBlocked records that blocking took effect, emitting Block exactly once.
// Idempotent on repeat calls; ErrNotExceeded when no exceed was recorded.
func (m *Manager) MarkBlocked(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, windowStart *time.Time, now time.Time) (*State, error) {
	st, err := m.Current(ctx, owner, key, windowStart)
	if err != nil {
		return nil, err
	}
	if !st.Exceeded() {
		return nil, ErrNotExceeded
	}
	if st.Blocked() {
		return st, nil
	}

	at := now.UTC()
	won, err := m.store.SetBlocked(ctx, owner, key, at)
	if err != nil {
		return nil, err
	}
	if !won {
		// Another caller blocked first; return their state.
		return m.Current(ctx, owner, key, windowStart)
	}

	st.BlockedAt = &at
	m.events.OnBlock(ctx, owner, key)
	m.log.InfoContext(ctx, "limit blocked", "owner", owner.String(), "limit_key", string(key))
	return st, nil
}

// MaybeWarn emits a Warning for the crossed threshold only when it is
// strictly greater than the last announced one (absent counts as -inf), which
// keeps warnings monotonic within a window: a threshold already announced
// never re-fires even if usage dips and climbs back past it. Only a reset or
// a new window clears announced thresholds.
func (m *Manager) MaybeWarn(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64, windowStart *time.Time, now time.Time) (*State, error) {
	at := now.UTC()

	for attempt := range m.retryAttempts {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * m.retryBackoff)
		}

		st, err := m.Current(ctx, owner, key, windowStart)
		if err != nil {
			return nil, err
		}

		if st == nil {
			created := &State{
				Owner:                owner,
				Key:                  key,
				LastWarningThreshold: &threshold,
				LastWarningAt:        &at,
				WindowStart:          windowStamp(windowStart),
			}
			if err := m.store.Create(ctx, created); err != nil {
				if errors.Is(err, ErrStateExists) {
					continue
				}
				return nil, err
			}
			m.emitWarning(ctx, owner, key, threshold)
			return created, nil
		}

		if st.LastWarningThreshold != nil && threshold <= *st.LastWarningThreshold {
			return st, nil
		}

		won, err := m.store.SetWarning(ctx, owner, key, threshold, at)
		if err != nil {
			return nil, err
		}
		if !won {
			continue // a concurrent caller advanced the threshold, re-check
		}
		st.LastWarningThreshold = &threshold
		st.LastWarningAt = &at
		m.emitWarning(ctx, owner, key, threshold)
		return st, nil
	}

	return nil, ErrConflictRetryExhausted
}

// Reset unconditionally deletes the state record. Used for administrative
// overrides and tests.
func (m *Manager) Reset(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) error {
	return m.store.Delete(ctx, owner, key)
}

func (m *Manager) emitGraceStart(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, graceEndsAt time.Time) {
	m.events.OnGraceStart(ctx, owner, key, graceEndsAt)
	m.log.InfoContext(ctx, "limit exceeded, grace started",
		"owner", owner.String(), "limit_key", string(key), "grace_ends_at", graceEndsAt)
}

func (m *Manager) emitWarning(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64) {
	m.events.OnWarning(ctx, owner, key, threshold)
	m.log.InfoContext(ctx, "limit warning threshold crossed",
		"owner", owner.String(), "limit_key", string(key), "threshold", threshold)
}

func windowStamp(windowStart *time.Time) *time.Time {
	if windowStart == nil {
		return nil
	}
	stamp := windowStart.UTC()
	return &stamp
}
