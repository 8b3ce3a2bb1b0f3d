// Package logger provides an slog.Logger factory with environment presets,
// context-driven attribute injection, and attribute helpers for the
// identifiers this module logs most (owners, limit keys, plans).
//
// # Basic usage
//
//	log := logger.New(
//		logger.WithProduction("quotaguard"),
//	)
//	log.Info("catalog loaded", logger.Plan("pro"))
//
// # Context attributes
//
// Extractors pull request-scoped values into every record logged with a
// given context:
//
//	type requestIDKey struct{}
//
//	log := logger.New(
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
// # Environment presets
//
// WithDevelopment selects text output at debug level; WithProduction and
// WithStaging select JSON at info level. WithEnvironment picks a preset by
// name, falling back to development for unknown names.
package logger
