package limits

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/grace"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

// defaultConfig is the secure-by-default stand-in for unconfigured limit
// keys: a zero amount that blocks usage. Opting out requires an explicit
// Unlimited amount in the plan.
var defaultConfig = entitlement.LimitConfig{Amount: 0, Policy: entitlement.BlockUsage}

// Decision is the outcome of a single limit check. It is data, never an
// error: errors are reserved for collaborator failures.
type Decision struct {
	Allowed   bool
	Severity  Severity
	Remaining int64
	// GraceEndsAt is set while the decision rides an active grace period.
	GraceEndsAt time.Time
}

type configEntry struct {
	cfg        entitlement.LimitConfig
	configured bool
}

// Evaluation memoizes one logical request's limit queries: the owner's
// effective plan, each key's configuration, window, usage and enforcement
// state are computed at most once. Not safe for concurrent use; create one
// per request with Checker.Eval and discard it afterward.
type Evaluation struct {
	checker *Checker
	owner   entitlement.Owner
	now     time.Time

	planLoaded bool
	plan       entitlement.Plan

	configs      map[entitlement.LimitKey]*configEntry
	usages       map[entitlement.LimitKey]int64
	windows      map[entitlement.LimitKey]period.Window
	states       map[entitlement.LimitKey]*grace.State
	statesLoaded map[entitlement.LimitKey]bool
}

// Owner returns the owner this evaluation is scoped to.
func (e *Evaluation) Owner() entitlement.Owner {
	return e.owner
}

// Plan returns the owner's effective plan, resolved once per evaluation.
func (e *Evaluation) Plan(ctx context.Context) (entitlement.Plan, error) {
	if e.planLoaded {
		return e.plan, nil
	}
	plan, err := e.checker.resolver.Resolve(ctx, e.owner)
	if err != nil {
		return entitlement.Plan{}, err
	}
	e.plan = plan
	e.planLoaded = true
	return plan, nil
}

// HasFeature reports whether the owner's plan enables the feature.
func (e *Evaluation) HasFeature(ctx context.Context, f entitlement.Feature) (bool, error) {
	plan, err := e.Plan(ctx)
	if err != nil {
		return false, err
	}
	return plan.HasFeature(f), nil
}

// Configured reports whether the limit key exists in the effective plan.
func (e *Evaluation) Configured(ctx context.Context, key entitlement.LimitKey) (bool, error) {
	_, configured, err := e.config(ctx, key)
	return configured, err
}

func (e *Evaluation) config(ctx context.Context, key entitlement.LimitKey) (entitlement.LimitConfig, bool, error) {
	if entry, ok := e.configs[key]; ok {
		return entry.cfg, entry.configured, nil
	}
	plan, err := e.Plan(ctx)
	if err != nil {
		return entitlement.LimitConfig{}, false, err
	}
	cfg, configured := plan.Limit(key)
	if !configured {
		cfg = defaultConfig
	}
	e.configs[key] = &configEntry{cfg: cfg, configured: configured}
	return cfg, configured, nil
}

// window resolves and memoizes the current allowance window for a periodic key.
func (e *Evaluation) window(ctx context.Context, key entitlement.LimitKey, cfg entitlement.LimitConfig) (period.Window, error) {
	if w, ok := e.windows[key]; ok {
		return w, nil
	}
	w, err := e.checker.periods.Window(ctx, e.owner, cfg.Period, e.now)
	if err != nil {
		return period.Window{}, err
	}
	e.windows[key] = w
	return w, nil
}

// windowStart returns the stamp for the grace manager: the current window
// start for periodic limits, nil for persistent caps.
func (e *Evaluation) windowStart(ctx context.Context, key entitlement.LimitKey, cfg entitlement.LimitConfig) (*time.Time, error) {
	if !cfg.IsPeriodic() {
		return nil, nil
	}
	w, err := e.window(ctx, key, cfg)
	if err != nil {
		return nil, err
	}
	return &w.Start, nil
}

// Usage returns current usage for the key: a live count for persistent caps,
// the current window's counter for periodic allowances. Unconfigured keys
// read as zero.
func (e *Evaluation) Usage(ctx context.Context, key entitlement.LimitKey) (int64, error) {
	if used, ok := e.usages[key]; ok {
		return used, nil
	}
	cfg, configured, err := e.config(ctx, key)
	if err != nil {
		return 0, err
	}
	if !configured {
		e.usages[key] = 0
		return 0, nil
	}
	used, err := e.usageFor(ctx, key, cfg)
	if err != nil {
		return 0, err
	}
	e.usages[key] = used
	return used, nil
}

// usageFor counts usage under an explicit config, bypassing the memo. Used
// by Usage (with the effective config) and CanDowngrade (with the target
// plan's config).
func (e *Evaluation) usageFor(ctx context.Context, key entitlement.LimitKey, cfg entitlement.LimitConfig) (int64, error) {
	if cfg.IsPeriodic() {
		w, err := e.window(ctx, key, cfg)
		if err != nil {
			return 0, err
		}
		rec, err := e.checker.records.Get(ctx, e.owner, key, w)
		if err != nil {
			return 0, errors.Join(ErrFailedToCountUsage, err)
		}
		return rec.Used, nil
	}

	counter, ok := e.checker.counters[key]
	if !ok {
		return 0, ErrNoCounterRegistered
	}
	used, err := counter(ctx, e.owner, cfg.Scope)
	if err != nil {
		return 0, errors.Join(ErrFailedToCountUsage, err)
	}
	return used, nil
}

// Amount returns the configured cap, zero for unconfigured keys.
func (e *Evaluation) Amount(ctx context.Context, key entitlement.LimitKey) (int64, error) {
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return 0, err
	}
	return cfg.Amount, nil
}

// Remaining returns max(0, amount-used), or Unlimited.
func (e *Evaluation) Remaining(ctx context.Context, key entitlement.LimitKey) (int64, error) {
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return 0, err
	}
	if cfg.IsUnlimited() {
		return entitlement.Unlimited, nil
	}
	used, err := e.Usage(ctx, key)
	if err != nil {
		return 0, err
	}
	return max(0, cfg.Amount-used), nil
}

// PercentUsed returns usage as a percentage capped at 100. Zero-amount and
// Unlimited limits read as 0.
func (e *Evaluation) PercentUsed(ctx context.Context, key entitlement.LimitKey) (int, error) {
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return 0, err
	}
	if cfg.Amount <= 0 {
		return 0, nil
	}
	used, err := e.Usage(ctx, key)
	if err != nil {
		return 0, err
	}
	return min(int((used*100)/cfg.Amount), 100), nil
}

// state reads the enforcement state through the staleness-aware manager,
// memoized per key.
func (e *Evaluation) state(ctx context.Context, key entitlement.LimitKey) (*grace.State, error) {
	if e.statesLoaded[key] {
		return e.states[key], nil
	}
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return nil, err
	}
	ws, err := e.windowStart(ctx, key, cfg)
	if err != nil {
		return nil, err
	}
	st, err := e.checker.grace.Current(ctx, e.owner, key, ws)
	if err != nil {
		return nil, err
	}
	e.setState(key, st)
	return st, nil
}

func (e *Evaluation) setState(key entitlement.LimitKey, st *grace.State) {
	e.states[key] = st
	e.statesLoaded[key] = true
}

// ShouldWarn returns the highest configured threshold that usage has reached
// but the state machine has not yet announced, or nil when none is pending.
func (e *Evaluation) ShouldWarn(ctx context.Context, key entitlement.LimitKey) (*float64, error) {
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return nil, err
	}
	crossed, err := e.crossedThreshold(ctx, key, cfg)
	if err != nil || crossed == nil {
		return nil, err
	}
	st, err := e.state(ctx, key)
	if err != nil {
		return nil, err
	}
	if st != nil && st.LastWarningThreshold != nil && *crossed <= *st.LastWarningThreshold {
		return nil, nil
	}
	return crossed, nil
}

// crossedThreshold returns the highest configured threshold current usage has
// reached or passed, nil when below them all or thresholds do not apply.
func (e *Evaluation) crossedThreshold(ctx context.Context, key entitlement.LimitKey, cfg entitlement.LimitConfig) (*float64, error) {
	if cfg.IsUnlimited() || cfg.Amount == 0 || len(cfg.WarnThresholds) == 0 {
		return nil, nil
	}
	used, err := e.Usage(ctx, key)
	if err != nil {
		return nil, err
	}
	frac := float64(used) / float64(cfg.Amount)
	var crossed *float64
	for _, t := range cfg.WarnThresholds {
		if frac >= t {
			threshold := t
			crossed = &threshold
		}
	}
	return crossed, nil
}

// announceWarnings pushes the highest crossed threshold through the state
// machine, which guarantees each threshold fires at most once per window.
func (e *Evaluation) announceWarnings(ctx context.Context, key entitlement.LimitKey, cfg entitlement.LimitConfig) error {
	crossed, err := e.crossedThreshold(ctx, key, cfg)
	if err != nil || crossed == nil {
		return err
	}
	ws, err := e.windowStart(ctx, key, cfg)
	if err != nil {
		return err
	}
	st, err := e.checker.grace.MaybeWarn(ctx, e.owner, key, *crossed, ws, e.now)
	if err != nil {
		return err
	}
	e.setState(key, st)
	return nil
}

// Check answers "would this action, adding n units, stay within the limit"
// and performs the enforcement transitions the answer implies: pending
// warnings are announced, a first crossing under GraceThenBlock records the
// exceed (GraceStart fires once), and an expired grace records the block
// (Block fires once). Check never consumes usage; pair it with
// Checker.Record for periodic allowances.
func (e *Evaluation) Check(ctx context.Context, key entitlement.LimitKey, n int64) (Decision, error) {
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if cfg.IsUnlimited() {
		return Decision{Allowed: true, Severity: SeverityOk, Remaining: entitlement.Unlimited}, nil
	}

	used, err := e.Usage(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if err := e.announceWarnings(ctx, key, cfg); err != nil {
		return Decision{}, err
	}

	prospective := used + n
	decision := Decision{Remaining: max(0, cfg.Amount-used)}

	switch cfg.Policy {
	case entitlement.JustWarn:
		decision.Allowed = true

	case entitlement.BlockUsage:
		// Computed from usage alone: no grace is ever granted, and no state
		// row participates in the decision.
		decision.Allowed = prospective <= cfg.Amount

	case entitlement.GraceThenBlock:
		// A recorded exceed outlives usage dips: once grace runs or the
		// owner is blocked, the outcome comes from the state machine until
		// an explicit reset or a window rollover, not from live usage.
		st, err := e.state(ctx, key)
		if err != nil {
			return Decision{}, err
		}
		if !st.Exceeded() {
			if prospective <= cfg.Amount {
				decision.Allowed = true
				break
			}
			ws, err := e.windowStart(ctx, key, cfg)
			if err != nil {
				return Decision{}, err
			}
			st, err = e.checker.grace.MarkExceeded(ctx, e.owner, key, cfg.GracePeriod, ws, e.now)
			if err != nil {
				return Decision{}, err
			}
			e.setState(key, st)
		}

		if st.Blocked() || st.GraceExpiredAt(e.now) {
			if !st.Blocked() {
				ws, err := e.windowStart(ctx, key, cfg)
				if err != nil {
					return Decision{}, err
				}
				st, err = e.checker.grace.MarkBlocked(ctx, e.owner, key, ws, e.now)
				if err != nil {
					return Decision{}, err
				}
				e.setState(key, st)
			}
			decision.Allowed = false
		} else {
			decision.Allowed = true
			decision.GraceEndsAt = st.GraceEndsAt()
		}
	}

	severity, err := e.Severity(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	decision.Severity = severity
	return decision, nil
}

// Severity classifies the owner's standing against one limit:
// Blocked > Grace > AtLimit > Warning > Ok. Unlimited limits are always Ok.
// Observing an expired grace performs the lazy Exceeded->Blocked transition,
// so the Block event fires on the first read past the deadline.
func (e *Evaluation) Severity(ctx context.Context, key entitlement.LimitKey) (Severity, error) {
	cfg, _, err := e.config(ctx, key)
	if err != nil {
		return SeverityOk, err
	}
	if cfg.IsUnlimited() {
		return SeverityOk, nil
	}

	used, err := e.Usage(ctx, key)
	if err != nil {
		return SeverityOk, err
	}
	st, err := e.state(ctx, key)
	if err != nil {
		return SeverityOk, err
	}

	if cfg.Policy == entitlement.BlockUsage && used > cfg.Amount {
		return SeverityBlocked, nil
	}
	if cfg.Policy == entitlement.GraceThenBlock && st.Exceeded() {
		if st.Blocked() {
			return SeverityBlocked, nil
		}
		if st.GraceExpiredAt(e.now) {
			ws, err := e.windowStart(ctx, key, cfg)
			if err != nil {
				return SeverityOk, err
			}
			st, err = e.checker.grace.MarkBlocked(ctx, e.owner, key, ws, e.now)
			if err != nil {
				return SeverityOk, err
			}
			e.setState(key, st)
			return SeverityBlocked, nil
		}
		return SeverityGrace, nil
	}

	if used >= cfg.Amount {
		return SeverityAtLimit, nil
	}
	if len(cfg.WarnThresholds) > 0 && cfg.Amount > 0 {
		if float64(used)/float64(cfg.Amount) >= cfg.WarnThresholds[0] {
			return SeverityWarning, nil
		}
	}
	return SeverityOk, nil
}

// HighestSeverity returns the maximum severity across the keys, driving
// aggregate banners.
func (e *Evaluation) HighestSeverity(ctx context.Context, keys ...entitlement.LimitKey) (Severity, error) {
	highest := SeverityOk
	for _, key := range keys {
		severity, err := e.Severity(ctx, key)
		if err != nil {
			return SeverityOk, err
		}
		if severity > highest {
			highest = severity
		}
	}
	return highest, nil
}

// CanDowngrade checks whether current usage fits inside every limited key of
// the target plan. Keys without a registered counter cannot be verified and
// are allowed through, matching the permissive stance of usage dashboards.
func (e *Evaluation) CanDowngrade(ctx context.Context, targetPlanKey string) error {
	target, err := e.checker.resolver.Catalog().Plan(targetPlanKey)
	if err != nil {
		return err
	}

	for key, cfg := range target.Limits {
		if cfg.IsUnlimited() {
			continue
		}
		used, err := e.usageFor(ctx, key, cfg)
		if err != nil {
			if errors.Is(err, ErrNoCounterRegistered) {
				continue
			}
			return err
		}
		if used > cfg.Amount {
			return errors.Join(ErrDowngradeNotPossible,
				errors.New("limit "+string(key)+" exceeds the target plan amount"))
		}
	}
	return nil
}
