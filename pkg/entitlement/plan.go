package entitlement

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Plan describes an entitlement plan: feature flags and limit configurations.
// Plans are treated as immutable after the catalog loads them.
type Plan struct {
	Key         string
	Name        string
	Description string
	Features    map[Feature]bool
	Limits      map[LimitKey]LimitConfig
	// Default marks the plan used when no resolver lookup matches an owner.
	Default bool
}

// HasFeature reports whether the feature is enabled for this plan.
// Unknown features are disabled: entitlements are secure by default.
func (p Plan) HasFeature(f Feature) bool {
	return p.Features[f]
}

// Limit returns the configuration for a limit key and whether it is configured.
func (p Plan) Limit(key LimitKey) (LimitConfig, bool) {
	cfg, ok := p.Limits[key]
	return cfg, ok
}

// LimitKeys returns the plan's configured limit keys in sorted order.
func (p Plan) LimitKeys() []LimitKey {
	keys := slices.Collect(maps.Keys(p.Limits))
	slices.Sort(keys)
	return keys
}

func (p Plan) validate() error {
	if p.Key == "" {
		return errors.New("plan key is required")
	}
	for key, cfg := range p.Limits {
		if err := cfg.validate(); err != nil {
			return fmt.Errorf("limit %q: %w", key, err)
		}
	}
	return nil
}

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog holds the validated, immutable plan set for one engine instance.
// Build it once at startup; there is no runtime mutation.
type Catalog struct {
	plans      map[string]Plan
	defaultKey string
}

// NewCatalog loads plans from the source and validates every configuration.
// A malformed plan fails construction: configuration defects must surface at
// boot, not during evaluation.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	defaultKey := ""
	for key, plan := range plans {
		if plan.Key == "" {
			plan.Key = key
			plans[key] = plan
		}
		if err := plan.validate(); err != nil {
			return nil, errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("plan %q: %w", key, err))
		}
		if plan.Default {
			if defaultKey != "" {
				return nil, errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plans %q and %q both marked default", defaultKey, key))
			}
			defaultKey = key
		}
	}

	return &Catalog{plans: plans, defaultKey: defaultKey}, nil
}

// Plan returns the plan for a key.
func (c *Catalog) Plan(key string) (Plan, error) {
	plan, ok := c.plans[key]
	if !ok {
		return Plan{}, errors.Join(ErrPlanNotFound, fmt.Errorf("plan %q", key))
	}
	return plan, nil
}

// DefaultPlan returns the plan marked Default.
func (c *Catalog) DefaultPlan() (Plan, error) {
	if c.defaultKey == "" {
		return Plan{}, ErrNoDefaultPlan
	}
	return c.plans[c.defaultKey], nil
}

// Keys returns all plan keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := slices.Collect(maps.Keys(c.plans))
	slices.Sort(keys)
	return keys
}
