package subscription

import "errors"

var (
	ErrMissingAPIKey              = errors.New("billing provider API key is required")
	ErrInvalidProviderEnvironment = errors.New("invalid billing provider environment")
	ErrProviderError              = errors.New("billing provider request failed")
)
