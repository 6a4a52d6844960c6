package risk

import "fmt"

// InsufficientDataError is returned when a computation has fewer observations
// than it needs.
type InsufficientDataError struct {
	Operation    string
	Observations int
	Required     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: %d observations (minimum: %d)", e.Operation, e.Observations, e.Required)
}

// InvalidConfigurationError is returned when a configuration field is out of range.
type InvalidConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// DegenerateInputError is returned when the input has no dispersion where a
// computation divides by it (zero volatility, non-positive variance).
type DegenerateInputError struct {
	Operation string
	Reason    string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Operation, e.Reason)
}

func insufficient(op string, have, need int) error {
	return &InsufficientDataError{Operation: op, Observations: have, Required: need}
}

func invalidConfig(field string, value any, reason string) error {
	return &InvalidConfigurationError{Field: field, Value: value, Reason: reason}
}

func degenerate(op, reason string) error {
	return &DegenerateInputError{Operation: op, Reason: reason}
}
