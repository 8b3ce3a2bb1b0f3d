package usage

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

// CounterFunc returns the live count of an owner's rows for a persistent cap.
// The scope, when non-nil, narrows the count; it comes from the plan
// configuration and overrides any default scope the counter applies on its
// own. Counts must be live (not cached counters) so deletions are reflected
// immediately.
//
// Counters must support the scope part kinds they are configured with: named
// filters, equality maps, predicates, and left-to-right compositions of
// these. A counter receiving an unsupported part should return an error, not
// silently ignore it.
type CounterFunc func(ctx context.Context, owner entitlement.Owner, scope *entitlement.CountScope) (int64, error)

// CounterRegistry maps a limit key to its CounterFunc.
// Not thread-safe: register all counters at startup only.
type CounterRegistry map[entitlement.LimitKey]CounterFunc

// NewRegistry returns a new, empty CounterRegistry.
func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the CounterFunc for the given key. Panics if fn is nil.
func (r CounterRegistry) Register(key entitlement.LimitKey, fn CounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("usage: CounterFunc for limit key %q cannot be nil", key))
	}
	r[key] = fn
}
