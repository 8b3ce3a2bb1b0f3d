package limits

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
)

// Status is the human-facing report for one limit key.
type Status struct {
	Key        entitlement.LimitKey
	Configured bool

	Amount      int64
	Used        int64
	Remaining   int64
	PercentUsed int

	Severity    Severity
	GraceActive bool
	GraceEndsAt *time.Time
	Blocked     bool

	// Window holds the active allowance window for periodic limits only.
	Window *period.Window

	// Message is filled by the optional MessageFormatter collaborator.
	Message string
}

// MessageContext carries everything a message formatter needs to phrase a
// status for an end user.
type MessageContext struct {
	Owner  entitlement.Owner
	Status Status
}

// MessageFormatter renders human messages for limit statuses, keyed by
// severity context. Optional: without one, Status.Message stays empty.
type MessageFormatter interface {
	Message(ctx context.Context, mc MessageContext) string
}

// MessageFunc adapts a function to the MessageFormatter interface.
type MessageFunc func(ctx context.Context, mc MessageContext) string

func (f MessageFunc) Message(ctx context.Context, mc MessageContext) string {
	return f(ctx, mc)
}

// Status assembles the full report for one limit key.
func (e *Evaluation) Status(ctx context.Context, key entitlement.LimitKey) (Status, error) {
	cfg, configured, err := e.config(ctx, key)
	if err != nil {
		return Status{}, err
	}

	status := Status{Key: key, Configured: configured, Amount: cfg.Amount}

	status.Used, err = e.Usage(ctx, key)
	if err != nil {
		return Status{}, err
	}
	status.Remaining, err = e.Remaining(ctx, key)
	if err != nil {
		return Status{}, err
	}
	status.PercentUsed, err = e.PercentUsed(ctx, key)
	if err != nil {
		return Status{}, err
	}
	status.Severity, err = e.Severity(ctx, key)
	if err != nil {
		return Status{}, err
	}

	st, err := e.state(ctx, key)
	if err != nil {
		return Status{}, err
	}
	if st.Exceeded() {
		graceEndsAt := st.GraceEndsAt()
		status.GraceEndsAt = &graceEndsAt
		status.GraceActive = st.GraceActiveAt(e.now)
	}
	status.Blocked = status.Severity == SeverityBlocked

	if cfg.IsPeriodic() {
		w, err := e.window(ctx, key, cfg)
		if err != nil {
			return Status{}, err
		}
		status.Window = &w
	}

	if e.checker.messages != nil {
		status.Message = e.checker.messages.Message(ctx, MessageContext{Owner: e.owner, Status: status})
	}
	return status, nil
}

// AllStatuses reports every limit configured in the effective plan, for
// dashboards. Counting failures degrade that key to zero usage instead of
// failing the whole report; enforcement paths never use this method.
func (e *Evaluation) AllStatuses(ctx context.Context) ([]Status, error) {
	plan, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(plan.Limits))
	for _, key := range plan.LimitKeys() {
		status, err := e.Status(ctx, key)
		if err != nil {
			if errors.Is(err, ErrFailedToCountUsage) || errors.Is(err, ErrNoCounterRegistered) {
				cfg := plan.Limits[key]
				e.checker.log.WarnContext(ctx, "usage unavailable for status report",
					"owner", e.owner.String(), "limit_key", string(key), "error", err)
				statuses = append(statuses, Status{
					Key:        key,
					Configured: true,
					Amount:     cfg.Amount,
					Remaining:  cfg.Amount,
				})
				continue
			}
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
