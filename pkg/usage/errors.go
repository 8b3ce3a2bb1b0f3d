package usage

import "errors"

var (
	ErrNoCounterRegistered = errors.New("no usage counter registered for limit key")
	ErrInvalidIncrement    = errors.New("usage increment must be positive")

	ErrFailedToReadUsage      = errors.New("failed to read usage record")
	ErrFailedToIncrementUsage = errors.New("failed to increment usage record")
)
