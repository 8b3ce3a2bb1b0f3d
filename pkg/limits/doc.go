// Package limits is the query facade of the quota engine. It composes the
// plan catalog, the usage counters, the period calculator and the grace
// state machine into limit decisions, severity classifications and
// human-facing status reports.
//
// The central type is Evaluation, a per-request memo context created with
// Checker.Eval: within one evaluation the owner's effective plan, each
// limit's configuration, window and usage are computed at most once, no
// matter how many facade calls touch the same key. Evaluations are scoped to
// a single goroutine and discarded afterward.
//
// Basic usage:
//
//	checker := limits.NewChecker(resolver,
//	    limits.WithCounters(counters),
//	    limits.WithGrace(graceManager),
//	)
//
//	ev := checker.Eval(ctx, owner)
//	decision, err := ev.Check(ctx, "projects", 1)
//	if err != nil {
//	    // storage/collaborator failure, not a limit outcome
//	}
//	if !decision.Allowed {
//	    // deny the action
//	}
//
// Undefined limit keys default to a zero amount, not Unlimited: entitlements
// are secure by default and opting out requires an explicit Unlimited amount
// in the plan.
package limits
