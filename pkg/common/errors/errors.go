package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types used across the rxflow library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrTimeout indicates that a deadline elapsed before a stream produced a value
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Kind classifies an error surfaced by an operator.
type Kind int

const (
	// KindUpstream is any error that did not originate in rxflow itself.
	// Such errors are passed through unmodified.
	KindUpstream Kind = iota

	// KindInvalidConfiguration is reported before any value flows.
	KindInvalidConfiguration

	// KindTimeout is synthesized by the default timeout fallback.
	KindTimeout

	// KindTeardown means one or more teardown callbacks failed during cancellation.
	KindTeardown
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "InvalidConfiguration"
	case KindTimeout:
		return "Timeout"
	case KindTeardown:
		return "TeardownAggregate"
	default:
		return "Upstream"
	}
}

// KindOf classifies err. A nil error is reported as KindUpstream.
func KindOf(err error) Kind {
	var teardown *TeardownError
	switch {
	case errors.As(err, &teardown):
		return KindTeardown
	case errors.Is(err, ErrInvalidConfiguration):
		return KindInvalidConfiguration
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindUpstream
	}
}

// IsTimeout returns true if the error was caused by an elapsed deadline
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError for module.field.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// OperationError wraps a failure of a named operation in a module.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches free-form context and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// TimeoutError is emitted by a timeout monitor that has no custom fallback.
type TimeoutError struct {
	// Meta is the caller-supplied value from the timeout configuration.
	Meta interface{}

	// LastValue is the most recent value seen before the deadline, if any.
	LastValue interface{}

	// Seen is the number of values forwarded before the deadline.
	Seen int
}

func (e *TimeoutError) Error() string {
	if e.Meta != nil {
		return fmt.Sprintf("timeout has occurred after %d value(s) (meta: %v)", e.Seen, e.Meta)
	}
	return fmt.Sprintf("timeout has occurred after %d value(s)", e.Seen)
}

// Unwrap returns ErrTimeout.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// TeardownError aggregates the errors raised while unsubscribing.
// Every teardown still runs; Errs holds them in the order they were captured.
type TeardownError struct {
	Errs []error
}

// NewTeardownError returns nil when errs is empty. Nested TeardownErrors are
// flattened so the first captured error stays first.
func NewTeardownError(errs []error) error {
	var flat []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if nested, ok := err.(*TeardownError); ok {
			flat = append(flat, nested.Errs...)
			continue
		}
		flat = append(flat, err)
	}
	if len(flat) == 0 {
		return nil
	}
	return &TeardownError{Errs: flat}
}

func (e *TeardownError) Error() string {
	if len(e.Errs) == 1 {
		return "teardown failed: " + e.Errs[0].Error()
	}
	parts := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("teardown failed with %d errors: %s", len(e.Errs), strings.Join(parts, "; "))
}

// Unwrap exposes every captured error to errors.Is and errors.As.
func (e *TeardownError) Unwrap() []error {
	return e.Errs
}

// First returns the first captured error.
func (e *TeardownError) First() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e.Errs[0]
}
