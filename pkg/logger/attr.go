package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Owner records the limit owner under the key "owner".
// If owner is nil, it returns an empty Attr.
func Owner(owner any) slog.Attr {
	if owner == nil {
		return slog.Attr{}
	}
	return slog.Any("owner", owner)
}

// LimitKey records a limit key under the key "limit_key".
// If key is nil, it returns an empty Attr.
func LimitKey(key any) slog.Attr {
	if key == nil {
		return slog.Attr{}
	}
	return slog.Any("limit_key", key)
}

// Plan records a plan key under the key "plan".
// If plan is nil, it returns an empty Attr.
func Plan(plan any) slog.Attr {
	if plan == nil {
		return slog.Attr{}
	}
	return slog.Any("plan", plan)
}

// Component records a component name under the key "component".
// If name is empty, it returns an empty Attr.
func Component(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("component", name)
}
