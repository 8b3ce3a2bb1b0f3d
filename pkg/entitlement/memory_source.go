package entitlement

import (
	"context"
	"maps"
	"sync"
)

// inMemSource implements the Source interface using an in-memory plan map.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory Source with a deep copy of the given plans.
func NewInMemSource(plans map[string]Plan) Source {
	return &inMemSource{plans: copyPlans(plans)}
}

// Load returns a copy of all available plans from memory.
func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPlans(s.plans), nil
}

func copyPlans(plans map[string]Plan) map[string]Plan {
	plansCopy := make(map[string]Plan, len(plans))
	for key, plan := range plans {
		limitsCopy := make(map[LimitKey]LimitConfig, len(plan.Limits))
		for lk, cfg := range plan.Limits {
			cfg.WarnThresholds = append([]float64(nil), cfg.WarnThresholds...)
			limitsCopy[lk] = cfg
		}
		plan.Features = maps.Clone(plan.Features)
		plan.Limits = limitsCopy
		plansCopy[key] = plan
	}
	return plansCopy
}
