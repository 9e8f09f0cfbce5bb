package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrTimeout", ErrTimeout, "operation timed out"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
		{"ErrRunInProgress", ErrRunInProgress, "pipeline run already in progress"},
		{"ErrRestartLimitExceeded", ErrRestartLimitExceeded, "restart limit exceeded"},
		{"ErrRetryLimitExceeded", ErrRetryLimitExceeded, "retry limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "pipeline",
				Field:  "MaxRestarts",
				Value:  -1,
				Reason: "cannot be negative",
			},
			want: "pipeline: invalid MaxRestarts=-1 (cannot be negative)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "workerpool",
				Field:  "WorkerCount",
				Value:  0,
				Reason: "must be positive",
				Hint:   "use a value greater than 0",
			},
			want: "workerpool: invalid WorkerCount=0 (must be positive) - use a value greater than 0",
		},
		{
			name: "string value",
			err: &ValidationError{
				Module: "scheduler",
				Field:  "cron",
				Value:  "",
				Reason: "cannot be empty",
			},
			want: "scheduler: invalid cron= (cannot be empty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test")

	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should wrap ErrInvalidConfiguration")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid").
		WithHint("try using a positive value")

	if err.Hint != "try using a positive value" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try using a positive value")
	}

	if result := err.WithHint("new hint"); result != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("boom")
	err := NewOperationError("pipeline", "login", cause).WithContext("step 1")

	if got, want := err.Error(), "pipeline.login failed: boom (step 1)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("OperationError should wrap the cause error")
	}
}

func TestLimitError(t *testing.T) {
	cause := errors.New("still processing")

	restart := &LimitError{Policy: "start_over", Step: 0, Limit: 3}
	if !errors.Is(restart, ErrRestartLimitExceeded) {
		t.Error("start_over LimitError should match ErrRestartLimitExceeded")
	}
	if errors.Is(restart, ErrRetryLimitExceeded) {
		t.Error("start_over LimitError should not match ErrRetryLimitExceeded")
	}
	if got, want := restart.Error(), "step 1 (start_over): restart limit exceeded (limit 3)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	retry := &LimitError{Policy: "retry", Step: 2, Limit: 1, Cause: cause}
	if !errors.Is(retry, ErrRetryLimitExceeded) {
		t.Error("retry LimitError should match ErrRetryLimitExceeded")
	}
	if !errors.Is(retry, cause) {
		t.Error("retry LimitError should wrap its cause")
	}
	if !strings.HasSuffix(retry.Error(), ": still processing") {
		t.Errorf("Error() = %q, want cause suffix", retry.Error())
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"restart limit", &LimitError{Policy: "start_over"}, true},
		{"retry limit", &LimitError{Policy: "retry"}, true},
		{"run in progress", ErrRunInProgress, true},
		{"operation error", NewOperationError("pipeline", "f", errors.New("x")), false},
		{"timeout", ErrTimeout, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout error", ErrTimeout, true},
		{"run in progress", ErrRunInProgress, true},
		{"closed error", ErrClosed, false},
		{"wrapped timeout", &OperationError{Cause: ErrTimeout}, true},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTemporary(tt.err); got != tt.want {
				t.Errorf("IsTemporary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", NewValidationError("test", "field", 0, "test"), true},
		{"wrapped validation error", &OperationError{Cause: NewValidationError("test", "field", 0, "test")}, true},
		{"operation error", &OperationError{Cause: errors.New("test")}, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.want {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.want)
			}
		})
	}
}
