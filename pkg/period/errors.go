package period

import "errors"

// Configuration errors raised at evaluation time. Each indicates a plan or
// code defect the caller must fix, never a runtime condition.
var (
	ErrUnknownPeriodKind   = errors.New("unknown period kind")
	ErrInvalidPeriodWindow = errors.New("custom period window is invalid")
	ErrMissingPeriodSpec   = errors.New("limit has no period spec")
)
