package grace

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

type stateKey struct {
	owner entitlement.Owner
	key   entitlement.LimitKey
}

// MemoryStore is an in-memory Store for tests and single-process deployments.
// A single mutex stands in for the database-level uniqueness and row locking
// the Postgres store relies on.
type MemoryStore struct {
	mu     sync.Mutex
	states map[stateKey]State
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[stateKey]State)}
}

func (s *MemoryStore) Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[stateKey{owner: owner, key: key}]
	if !ok {
		return nil, nil
	}
	return cloneState(&st), nil
}

func (s *MemoryStore) Create(ctx context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := stateKey{owner: state.Owner, key: state.Key}
	if _, exists := s.states[k]; exists {
		return ErrStateExists
	}
	s.states[k] = *cloneState(state)
	return nil
}

func (s *MemoryStore) SetExceeded(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, at time.Time, gracePeriod time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := stateKey{owner: owner, key: key}
	st, ok := s.states[k]
	if !ok || st.ExceededAt != nil {
		return false, nil
	}
	at = at.UTC()
	st.ExceededAt = &at
	st.GracePeriod = gracePeriod
	s.states[k] = st
	return true, nil
}

func (s *MemoryStore) SetBlocked(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := stateKey{owner: owner, key: key}
	st, ok := s.states[k]
	if !ok || st.ExceededAt == nil || st.BlockedAt != nil {
		return false, nil
	}
	at = at.UTC()
	st.BlockedAt = &at
	s.states[k] = st
	return true, nil
}

func (s *MemoryStore) SetWarning(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := stateKey{owner: owner, key: key}
	st, ok := s.states[k]
	if !ok {
		return false, nil
	}
	if st.LastWarningThreshold != nil && threshold <= *st.LastWarningThreshold {
		return false, nil
	}
	at = at.UTC()
	st.LastWarningThreshold = &threshold
	st.LastWarningAt = &at
	s.states[k] = st
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, stateKey{owner: owner, key: key})
	return nil
}

func cloneState(st *State) *State {
	clone := *st
	clone.ExceededAt = cloneTime(st.ExceededAt)
	clone.BlockedAt = cloneTime(st.BlockedAt)
	clone.LastWarningAt = cloneTime(st.LastWarningAt)
	clone.WindowStart = cloneTime(st.WindowStart)
	if st.LastWarningThreshold != nil {
		t := *st.LastWarningThreshold
		clone.LastWarningThreshold = &t
	}
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
