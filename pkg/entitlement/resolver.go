package entitlement

import (
	"context"
	"errors"
)

// PlanLookup tries to resolve a plan key for an owner. Returning ok=false
// passes resolution to the next lookup in the chain; an error aborts it.
type PlanLookup func(ctx context.Context, owner Owner) (planKey string, ok bool, err error)

// Resolver decides which plan an owner is effectively on by consulting an
// ordered chain of lookups; the first hit wins. The historical question of
// whether a manual plan assignment beats an active subscription is therefore
// pure configuration: the order you pass is the priority you get.
type Resolver struct {
	catalog *Catalog
	chain   []PlanLookup
}

// NewResolver returns a Resolver over the catalog with the given lookup
// chain. The conventional order is manual override, then subscription, then
// nothing (falling through to the catalog's default plan); callers wanting
// subscription-wins simply reorder the chain.
func NewResolver(catalog *Catalog, chain ...PlanLookup) *Resolver {
	return &Resolver{catalog: catalog, chain: chain}
}

// Catalog returns the plan catalog the resolver answers from.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns the owner's effective plan. When no lookup matches, the
// catalog's default plan is used; without a default plan resolution fails.
func (r *Resolver) Resolve(ctx context.Context, owner Owner) (Plan, error) {
	for _, lookup := range r.chain {
		key, ok, err := lookup(ctx, owner)
		if err != nil {
			return Plan{}, errors.Join(ErrFailedToResolvePlan, err)
		}
		if !ok {
			continue
		}
		return r.catalog.Plan(key)
	}
	return r.catalog.DefaultPlan()
}

// StaticLookup returns a PlanLookup answering from a fixed owner → plan map,
// useful for manual overrides and tests.
func StaticLookup(assignments map[Owner]string) PlanLookup {
	return func(ctx context.Context, owner Owner) (string, bool, error) {
		key, ok := assignments[owner]
		return key, ok, nil
	}
}
