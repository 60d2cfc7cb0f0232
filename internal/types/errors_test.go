package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConduitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ConduitError
		want string
	}{
		{
			name: "without cause",
			err:  NewError(THREAD_BUSY, "thread is processing"),
			want: "[THREAD_BUSY] thread is processing",
		},
		{
			name: "with cause",
			err:  WrapError(CHECKPOINT_WRITE_FAILED, "put failed", fmt.Errorf("disk full")),
			want: "[CHECKPOINT_WRITE_FAILED] put failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConduitError_Is(t *testing.T) {
	err := WrapError(CHANNEL_TRANSPORT_FAILED, "connect refused", fmt.Errorf("dial tcp"))
	wrapped := fmt.Errorf("dispatch: %w", err)

	assert.True(t, errors.Is(wrapped, NewError(CHANNEL_TRANSPORT_FAILED, "")))
	assert.False(t, errors.Is(wrapped, NewError(CHANNEL_PROTOCOL_FAILED, "")))
}

func TestConduitError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := WrapError(PLAN_BUILD_FAILED, "planner", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorCodeOf(t *testing.T) {
	assert.Equal(t, THREAD_NOT_FOUND, ErrorCodeOf(NewError(THREAD_NOT_FOUND, "missing")))
	assert.Equal(t, ErrorCode(""), ErrorCodeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorCode(""), ErrorCodeOf(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError(CHANNEL_TRANSPORT_FAILED, "timeout")))
	assert.False(t, IsRetryable(NewError(CHANNEL_PROTOCOL_FAILED, "bad rpc")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestID_RoundTrip(t *testing.T) {
	id := NewID()
	require.NoError(t, id.Validate())

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseID_Invalid(t *testing.T) {
	_, err := ParseID("")
	assert.Error(t, err)

	_, err = ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestID_JSON(t *testing.T) {
	id := NewID()
	data, err := id.MarshalJSON()
	require.NoError(t, err)

	var out ID
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, id, out)

	var zero ID
	data, err = zero.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
