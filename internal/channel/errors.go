package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/netauto-ai/conduit/internal/types"
)

// Error is the typed failure surfaced to the orchestrator. Channels never
// retry internally; the orchestrator inspects the code to decide degradation.
type Error struct {
	Channel string
	Code    types.ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("channel %s: [%s] %s: %v", e.Channel, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("channel %s: [%s] %s", e.Channel, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewTransportError wraps a connectivity failure, including ctx deadline
// expiry, which is modeled as a transport failure.
func NewTransportError(channel string, cause error) *Error {
	return &Error{
		Channel: channel,
		Code:    types.CHANNEL_TRANSPORT_FAILED,
		Message: "transport failure",
		Cause:   cause,
	}
}

// NewProtocolError wraps a protocol-level failure (bad RPC, rejected
// payload).
func NewProtocolError(channel string, message string, cause error) *Error {
	return &Error{
		Channel: channel,
		Code:    types.CHANNEL_PROTOCOL_FAILED,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError wraps a pre-execution schema validation failure.
func NewValidationError(channel string, message string) *Error {
	return &Error{
		Channel: channel,
		Code:    types.CHANNEL_VALIDATION_FAILED,
		Message: message,
	}
}

// NewNotSupportedError reports an operation the channel cannot carry.
func NewNotSupportedError(channel string, message string) *Error {
	return &Error{
		Channel: channel,
		Code:    types.CHANNEL_NOT_SUPPORTED,
		Message: message,
	}
}

// IsPrimaryFailure reports whether err is a typed failure from a channel
// that the degradation policy may act on (transport or protocol).
func IsPrimaryFailure(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case types.CHANNEL_TRANSPORT_FAILED, types.CHANNEL_PROTOCOL_FAILED:
		return true
	default:
		return false
	}
}

// wrapExecErr converts a raw execution error into a typed channel error.
func wrapExecErr(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTransportError(name, err)
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return NewTransportError(name, err)
}
