package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "agent not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "agent not found" {
		t.Errorf("expected message 'agent not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("timeout")
	ctx := map[string]interface{}{
		"operation": "MemoryPoolAllocate",
		"size":      4096,
	}

	err := WrapWithContext(ErrCodeRuntime, "runtime call failed", cause, ctx)

	if err.Code != ErrCodeRuntime {
		t.Errorf("expected code %s, got %s", ErrCodeRuntime, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["operation"] != "MemoryPoolAllocate" {
		t.Errorf("expected operation to be MemoryPoolAllocate")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeNotFound,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeUnavailable,
		ErrCodeRuntime,
		ErrCodeDeprecated,
		ErrCodeUnsupported,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "structured", err: New(ErrCodeDeprecated, "deprecated"), want: ErrCodeDeprecated},
		{
			name: "wrapped by fmt",
			err:  fmt.Errorf("install: %w", New(ErrCodeUnsupported, "too old")),
			want: ErrCodeUnsupported,
		},
		{
			name: "outermost wins",
			err:  Wrap(ErrCodeRuntime, "call failed", New(ErrCodeTimeout, "slow")),
			want: ErrCodeRuntime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(ErrCodeRuntime, "call failed", New(ErrCodeTimeout, "slow"))

	if !HasCode(err, ErrCodeRuntime) {
		t.Error("expected outer code to match")
	}
	if !HasCode(err, ErrCodeTimeout) {
		t.Error("expected inner code to match")
	}
	if HasCode(err, ErrCodeDeprecated) {
		t.Error("did not expect unrelated code to match")
	}
	if HasCode(nil, ErrCodeRuntime) {
		t.Error("nil error should not carry any code")
	}
}
