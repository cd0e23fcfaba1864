package model

import "fmt"

// ValidationError reports the first violated field-level or cross-field
// constraint found while normalizing a deployment request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PrecisionError reports a basis-point rounding invariant violation. The
// requested absolute amount cannot be expressed at basis-point precision
// against the total-supply denominator.
type PrecisionError struct {
	Reason string
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("precision: %s", e.Reason)
}

// ConfigurationError reports a requested feature that the resolved
// deployment target does not support.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Reason)
}

// ErrorKind groups classified on-chain failures by who can act on them.
type ErrorKind string

const (
	// ErrKindCaller marks failures the caller can correct (bad parameters,
	// insufficient funds).
	ErrKindCaller ErrorKind = "caller"
	// ErrKindState marks valid requests rejected by current on-chain state.
	ErrKindState ErrorKind = "state"
	// ErrKindUnknown marks unrecognized reverts, preserved raw.
	ErrKindUnknown ErrorKind = "unknown"
)

// ClassifiedError is an on-chain execution failure mapped into a stable
// user-facing taxonomy. Raw preserves the identifying name or selector of
// the underlying revert for diagnostics.
type ClassifiedError struct {
	Kind  ErrorKind
	Label string
	Raw   string
	Cause error
}

func (e *ClassifiedError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Label, e.Raw)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Label)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}
