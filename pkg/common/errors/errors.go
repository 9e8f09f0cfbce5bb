// Package errors defines the error values shared by the stepflow packages.
package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the stepflow library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrRunInProgress indicates that Perform was called on a pipeline that is already running
	ErrRunInProgress = errors.New("pipeline run already in progress")

	// ErrRestartLimitExceeded indicates that a start-over step kept failing past the restart ceiling
	ErrRestartLimitExceeded = errors.New("restart limit exceeded")

	// ErrRetryLimitExceeded indicates that a retry step kept failing past the retry ceiling
	ErrRetryLimitExceeded = errors.New("retry limit exceeded")

	// ErrPanic indicates that an operation panicked
	ErrPanic = errors.New("operation panicked")
)

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError without a hint.
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

// Unwrap returns ErrInvalidConfiguration so callers can match any validation failure.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// OperationError wraps the failure of a named unit of work.
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

// WithContext attaches extra detail and returns the same error for chaining.
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

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// LimitError reports that a step exhausted its restart or retry ceiling.
// It unwraps to ErrRestartLimitExceeded or ErrRetryLimitExceeded.
type LimitError struct {
	Policy string
	Step   int
	Limit  int
	Cause  error
}

func (e *LimitError) Error() string {
	msg := fmt.Sprintf("step %d (%s): %v (limit %d)", e.Step+1, e.Policy, e.sentinel(), e.Limit)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LimitError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Cause}
}

func (e *LimitError) sentinel() error {
	if e.Policy == "retry" {
		return ErrRetryLimitExceeded
	}
	return ErrRestartLimitExceeded
}

// IsFatal returns true if the error ends a pipeline run rather than being
// absorbed by the step policy.
func IsFatal(err error) bool {
	return errors.Is(err, ErrRestartLimitExceeded) ||
		errors.Is(err, ErrRetryLimitExceeded) ||
		errors.Is(err, ErrRunInProgress)
}

// IsTemporary returns true if the error indicates a temporary condition
func IsTemporary(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRunInProgress)
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
