// Package quotaguard provides multi-tenant usage-quota and feature-entitlement
// enforcement for Go services.
//
// Applications declare plans (feature flags plus limit configurations), tell
// the engine how to count what owners have, and ask it two questions: "may
// this owner do this action" and "where does this owner stand against their
// limits". The engine handles the rest: billing-cycle and calendar allowance
// windows, warning thresholds, grace periods, blocking, and exactly-once
// notification events under concurrent evaluation.
//
// The building blocks live in subpackages:
//
//   - pkg/entitlement: plans, limit configurations, catalog and plan resolution
//   - pkg/period: allowance window calculation with subscription anchors
//   - pkg/usage: windowed usage counters and live-count capabilities
//   - pkg/grace: the enforcement state machine and its event sink
//   - pkg/limits: the caller-facing checker, decisions and status reports
//   - pkg/subscription: the Paddle-backed subscription anchor provider
//
// Basic Usage:
//
//	catalog, err := entitlement.NewCatalog(ctx, entitlement.NewYAMLSource(f))
//	if err != nil {
//		log.Fatal(err)
//	}
//	resolver := entitlement.NewResolver(catalog, lookupAssignedPlan)
//
//	counters := usage.NewRegistry()
//	counters.Register("projects", countProjects)
//
//	checker := limits.NewChecker(resolver,
//		limits.WithCounters(counters),
//		limits.WithUsageStore(usage.NewPGStore(pool)),
//		limits.WithGrace(grace.NewManager(grace.NewPGStore(pool),
//			grace.WithEvents(notifySink))),
//	)
//
//	eval := checker.Eval(ctx, owner)
//	decision, err := eval.Check(ctx, "projects", 1)
//	if err != nil {
//		return err
//	}
//	if !decision.Allowed {
//		return ErrQuotaExceeded
//	}
//
// Evaluations memoize plan, usage and window lookups, so a request that
// checks several limits pays for each underlying query once.
package quotaguard
