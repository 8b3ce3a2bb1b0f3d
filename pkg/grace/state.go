package grace

import (
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

// State is the persisted enforcement record for one (owner, limit key).
// At most one live record exists per key, enforced by the store's composite
// unique constraint. A record may carry only warning fields (nil ExceededAt)
// when thresholds fired before the cap was crossed.
//
// Invariant: BlockedAt implies ExceededAt is set and BlockedAt >= ExceededAt.
type State struct {
	Owner entitlement.Owner
	Key   entitlement.LimitKey

	// ExceededAt is set once, by the first caller observing the crossing.
	ExceededAt *time.Time
	// BlockedAt is set once grace has expired and blocking takes effect.
	BlockedAt *time.Time

	LastWarningThreshold *float64
	LastWarningAt        *time.Time

	// GracePeriod is the grace duration in effect at exceed time. Frozen on
	// the record so later plan changes never shorten or extend running grace.
	GracePeriod time.Duration

	// WindowStart stamps periodic limits with the window this state belongs
	// to; nil for persistent caps.
	WindowStart *time.Time
}

// Exceeded reports whether the cap crossing has been recorded.
func (s *State) Exceeded() bool {
	return s != nil && s.ExceededAt != nil
}

// Blocked reports whether blocking has taken effect.
func (s *State) Blocked() bool {
	return s != nil && s.BlockedAt != nil
}

// GraceEndsAt returns the instant grace expires, or the zero time when no
// exceed has been recorded.
func (s *State) GraceEndsAt() time.Time {
	if !s.Exceeded() {
		return time.Time{}
	}
	return s.ExceededAt.Add(s.GracePeriod)
}

// GraceActiveAt reports whether the owner is exceeded but still inside the
// grace window at now: not blocked and now < ExceededAt + GracePeriod.
func (s *State) GraceActiveAt(now time.Time) bool {
	if !s.Exceeded() || s.Blocked() {
		return false
	}
	return now.Before(s.GraceEndsAt())
}

// GraceExpiredAt is the complement of GraceActiveAt once an exceed exists.
func (s *State) GraceExpiredAt(now time.Time) bool {
	return s.Exceeded() && !now.Before(s.GraceEndsAt())
}

// staleFor reports whether the record belongs to a window other than the
// current one and must be discarded before any other logic runs.
func (s *State) staleFor(windowStart time.Time) bool {
	if s == nil {
		return false
	}
	return s.WindowStart == nil || !s.WindowStart.Equal(windowStart)
}
