package limits

// Severity is the ordered classification of an owner's standing against one
// limit. Higher values dominate when aggregating across keys.
type Severity int

const (
	SeverityOk Severity = iota
	SeverityWarning
	SeverityAtLimit
	SeverityGrace
	SeverityBlocked
)

func (s Severity) String() string {
	switch s {
	case SeverityOk:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityAtLimit:
		return "at_limit"
	case SeverityGrace:
		return "grace"
	case SeverityBlocked:
		return "blocked"
	}
	return "unknown"
}
