package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto-ai/conduit/internal/types"
)

func TestPrimary_Validate(t *testing.T) {
	p := NewPrimary(PrimaryConfig{BaseURL: "http://gateway"})

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name: "valid get",
			req:  Request{Device: "R1", Operation: "get"},
		},
		{
			name: "valid merge",
			req:  Request{Device: "R1", Operation: "merge-config", Payload: map[string]any{"a": 1}, Mutating: true},
		},
		{
			name:    "missing device",
			req:     Request{Operation: "get"},
			wantErr: true,
		},
		{
			name:    "unknown operation",
			req:     Request{Device: "R1", Operation: "format-disk"},
			wantErr: true,
		},
		{
			name:    "mutation without payload",
			req:     Request{Device: "R1", Operation: "merge-config", Mutating: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(t.Context(), tt.req)
			if tt.wantErr {
				var ce *Error
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, types.CHANNEL_VALIDATION_FAILED, ce.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrimary_Execute(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"interfaces": {"Gi0/1": {"oper-status": "up"}}}`)
	}))
	defer srv.Close()

	p := NewPrimary(PrimaryConfig{BaseURL: srv.URL})
	resp, err := p.Execute(t.Context(), Request{Device: "R1", Operation: "get"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Contains(t, gotPath, "device=R1")
	assert.Equal(t, "primary", resp.Channel)
	assert.Contains(t, resp.Output, "interfaces")
}

func TestPrimary_Execute_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "malformed yang path", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewPrimary(PrimaryConfig{BaseURL: srv.URL})
	_, err := p.Execute(t.Context(), Request{Device: "R1", Operation: "get"})

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, types.CHANNEL_PROTOCOL_FAILED, ce.Code)
}

func TestPrimary_Execute_ConnectionRefused(t *testing.T) {
	p := NewPrimary(PrimaryConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := p.Execute(t.Context(), Request{Device: "R1", Operation: "get"})

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, types.CHANNEL_TRANSPORT_FAILED, ce.Code)
	assert.True(t, IsPrimaryFailure(err))
}

type scriptedRunner struct {
	out string
	err error
}

func (r scriptedRunner) Run(ctx context.Context, device, command string) (string, error) {
	return r.out, r.err
}

func TestSecondary_Execute(t *testing.T) {
	s := NewSecondary(scriptedRunner{out: "interface Gi0/1\n  no shutdown\n"})

	resp, err := s.Execute(t.Context(), Request{
		Device:   "R1",
		Command:  "show running-config interface Gi0/1",
		Mutating: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "secondary", resp.Channel)
	assert.Contains(t, resp.Output["stdout"], "no shutdown")
}

func TestSecondary_NoEquivalent(t *testing.T) {
	s := NewSecondary(scriptedRunner{})

	_, err := s.Execute(t.Context(), Request{Device: "R1", Operation: "merge-config"})

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, types.CHANNEL_NOT_SUPPORTED, ce.Code)
	assert.False(t, IsPrimaryFailure(err), "unsupported is not a degradable failure")
}

func TestSecondary_NoRollback(t *testing.T) {
	s := NewSecondary(scriptedRunner{})
	assert.False(t, s.SupportsRollback())
	assert.Error(t, s.Validate(t.Context(), Request{Device: "R1"}))
}

func TestIsPrimaryFailure(t *testing.T) {
	assert.True(t, IsPrimaryFailure(NewTransportError("primary", fmt.Errorf("dial"))))
	assert.True(t, IsPrimaryFailure(NewProtocolError("primary", "bad rpc", nil)))
	assert.False(t, IsPrimaryFailure(NewValidationError("primary", "bad payload")))
	assert.False(t, IsPrimaryFailure(fmt.Errorf("plain error")))
}
