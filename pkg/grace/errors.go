package grace

import "errors"

var (
	// ErrStateExists is surfaced by stores when a concurrent writer created
	// the state row first. The manager re-reads instead of erroring.
	ErrStateExists = errors.New("enforcement state already exists")

	// ErrNotExceeded is returned by MarkBlocked when no exceed was recorded:
	// blocking without an exceed would violate the state machine.
	ErrNotExceeded = errors.New("enforcement state is not exceeded")

	// ErrConflictRetryExhausted is returned when bounded write-conflict
	// retries run out. Callers must treat it as a storage failure for that
	// single evaluation, distinguishable from a blocked business outcome.
	ErrConflictRetryExhausted = errors.New("enforcement state write conflict retries exhausted")

	ErrFailedToReadState  = errors.New("failed to read enforcement state")
	ErrFailedToWriteState = errors.New("failed to write enforcement state")
)
