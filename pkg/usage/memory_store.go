package usage

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

type memoryKey struct {
	owner       entitlement.Owner
	key         entitlement.LimitKey
	windowStart int64
}

// MemoryStore is an in-memory Store for tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[memoryKey]Record),
		now:     time.Now,
	}
}

// SetClock replaces the store's clock, for tests with fixed time.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[memoryKey{owner: owner, key: key, windowStart: window.Start.UnixNano()}]
	if !ok {
		return Record{Owner: owner, Key: key, Window: window}, nil
	}
	return rec, nil
}

func (s *MemoryStore) Increment(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window, n int64) (Record, error) {
	if n <= 0 {
		return Record{}, ErrInvalidIncrement
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey{owner: owner, key: key, windowStart: window.Start.UnixNano()}
	rec, ok := s.records[k]
	if !ok {
		rec = Record{Owner: owner, Key: key, Window: window}
	}
	rec.Used += n
	rec.LastUsedAt = s.now().UTC()
	s.records[k] = rec
	return rec, nil
}
