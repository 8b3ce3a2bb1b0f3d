// Package entitlement defines the plan catalog consumed by the quota engine:
// plans, boolean feature entitlements, and per-limit configuration (amounts,
// after-limit policies, grace periods, warning thresholds, period specs and
// count scopes).
//
// Plans are immutable after load. They come from a Source (in-memory map or
// YAML catalog) and are validated once, at construction, so configuration
// mistakes fail at boot instead of mid-evaluation.
//
// Key concepts:
//
//   - Owner: polymorphic billable reference, a (kind, id) pair
//   - Plan: feature flags plus limit configurations, keyed by LimitKey
//   - LimitConfig: amount, AfterLimitPolicy, grace period, warn thresholds,
//     optional PeriodSpec (periodic allowance) or CountScope (persistent cap)
//   - Resolver: ordered lookup chain deciding which plan an owner is on
//
// Basic usage:
//
//	plans := map[string]entitlement.Plan{
//	    "free": {
//	        Key:     "free",
//	        Default: true,
//	        Limits: map[entitlement.LimitKey]entitlement.LimitConfig{
//	            "projects": {Amount: 3, Policy: entitlement.BlockUsage},
//	        },
//	    },
//	}
//
//	catalog, err := entitlement.NewCatalog(ctx, entitlement.NewInMemSource(plans))
package entitlement
