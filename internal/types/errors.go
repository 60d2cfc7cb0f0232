package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Conduit errors.
type ErrorCode string

// Classification error codes
const (
	CLASSIFY_BACKEND_FAILED ErrorCode = "CLASSIFY_BACKEND_FAILED"
	CLASSIFY_PARSE_FAILED   ErrorCode = "CLASSIFY_PARSE_FAILED"
)

// Strategy selection error codes
const (
	STRATEGY_FALLBACK_FAILED ErrorCode = "STRATEGY_FALLBACK_FAILED"
	STRATEGY_TIMEOUT         ErrorCode = "STRATEGY_TIMEOUT"
)

// Planning error codes
const (
	PLAN_BUILD_FAILED ErrorCode = "PLAN_BUILD_FAILED"
	PLAN_PARSE_FAILED ErrorCode = "PLAN_PARSE_FAILED"
)

// Channel error codes
const (
	CHANNEL_VALIDATION_FAILED ErrorCode = "CHANNEL_VALIDATION_FAILED"
	CHANNEL_TRANSPORT_FAILED  ErrorCode = "CHANNEL_TRANSPORT_FAILED"
	CHANNEL_PROTOCOL_FAILED   ErrorCode = "CHANNEL_PROTOCOL_FAILED"
	CHANNEL_ROLLBACK_FAILED   ErrorCode = "CHANNEL_ROLLBACK_FAILED"
	CHANNEL_NOT_SUPPORTED     ErrorCode = "CHANNEL_NOT_SUPPORTED"
)

// Tool gateway error codes
const (
	TOOL_NOT_FOUND       ErrorCode = "TOOL_NOT_FOUND"
	TOOL_ALREADY_EXISTS  ErrorCode = "TOOL_ALREADY_EXISTS"
	TOOL_INVALID_INPUT   ErrorCode = "TOOL_INVALID_INPUT"
	TOOL_EXECUTION_ERROR ErrorCode = "TOOL_EXECUTION_ERROR"
)

// Checkpoint store error codes
const (
	CHECKPOINT_OPEN_FAILED  ErrorCode = "CHECKPOINT_OPEN_FAILED"
	CHECKPOINT_READ_FAILED  ErrorCode = "CHECKPOINT_READ_FAILED"
	CHECKPOINT_WRITE_FAILED ErrorCode = "CHECKPOINT_WRITE_FAILED"
	CHECKPOINT_STALE_WRITE  ErrorCode = "CHECKPOINT_STALE_WRITE"
	CHECKPOINT_NOT_FOUND    ErrorCode = "CHECKPOINT_NOT_FOUND"
)

// Thread lifecycle error codes
const (
	THREAD_NOT_FOUND       ErrorCode = "THREAD_NOT_FOUND"
	THREAD_BUSY            ErrorCode = "THREAD_BUSY"
	THREAD_NOT_INTERRUPTED ErrorCode = "THREAD_NOT_INTERRUPTED"
	THREAD_TERMINAL        ErrorCode = "THREAD_TERMINAL"
	THREAD_INVALID_INPUT   ErrorCode = "THREAD_INVALID_INPUT"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// ConduitError is a structured error with a code, message, and optional cause.
// Retryable hints callers that the failure is transient.
type ConduitError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if a cause exists.
func (e *ConduitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ConduitError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so errors.Is works across wrapped instances.
func (e *ConduitError) Is(target error) bool {
	var ce *ConduitError
	if errors.As(target, &ce) {
		return e.Code == ce.Code
	}
	return false
}

// NewError creates a non-retryable ConduitError.
func NewError(code ErrorCode, message string) *ConduitError {
	return &ConduitError{Code: code, Message: message}
}

// NewRetryableError creates a retryable ConduitError for transient failures.
func NewRetryableError(code ErrorCode, message string) *ConduitError {
	return &ConduitError{Code: code, Message: message, Retryable: true}
}

// WrapError creates a non-retryable ConduitError wrapping an existing error.
func WrapError(code ErrorCode, message string, cause error) *ConduitError {
	return &ConduitError{Code: code, Message: message, Cause: cause}
}

// ErrorCodeOf extracts the ErrorCode from err, or "" if err is not a ConduitError.
func ErrorCodeOf(err error) ErrorCode {
	var ce *ConduitError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsRetryable reports whether err carries a retryable hint.
func IsRetryable(err error) bool {
	var ce *ConduitError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}
