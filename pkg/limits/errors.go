package limits

import "errors"

// Domain errors for limit evaluation
var (
	ErrNoCounterRegistered = errors.New("limits: no usage counter registered for limit key")
	ErrFailedToCountUsage  = errors.New("limits: failed to count resource usage")

	ErrDowngradeNotPossible = errors.New("limits: downgrade not possible with current usage")
)
