package entitlement

import (
	"context"
)

// Plan key context management
type planKeyCtxKey struct{}

// SetPlanKeyToContext stores the plan key in the context for downstream access.
func SetPlanKeyToContext(ctx context.Context, planKey string) context.Context {
	return context.WithValue(ctx, planKeyCtxKey{}, planKey)
}

// PlanKeyFromContext retrieves the plan key from the context, if present.
func PlanKeyFromContext(ctx context.Context) (string, bool) {
	planKey, ok := ctx.Value(planKeyCtxKey{}).(string)
	return planKey, ok
}

// ContextLookup is a PlanLookup reading the plan key from the context, for
// applications whose middleware resolves the plan once per request.
func ContextLookup(ctx context.Context, _ Owner) (string, bool, error) {
	planKey, ok := PlanKeyFromContext(ctx)
	return planKey, ok, nil
}
