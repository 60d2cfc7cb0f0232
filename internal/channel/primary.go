package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/netauto-ai/conduit/internal/types"
)

// knownOperations is the primary channel's operation schema. Validation is
// strict: an unknown operation never reaches a device.
var knownOperations = map[string]string{
	"get":            http.MethodGet,
	"merge-config":   http.MethodPatch,
	"replace-config": http.MethodPut,
	"delete-config":  http.MethodDelete,
	"rpc":            http.MethodPost,
}

// PrimaryConfig configures the structured config-protocol channel.
type PrimaryConfig struct {
	// BaseURL is the RESTCONF-style gateway endpoint, e.g.
	// "https://nso.example.net/restconf".
	BaseURL string `yaml:"base_url"`
	// Username and Password are gateway credentials.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// Timeout is the per-call default when the caller supplies none.
	Timeout time.Duration `yaml:"timeout"`
}

// Primary is the structured, schema-validated channel. Mutating calls are
// wrapped in a gateway transaction, so a partial failure rolls back
// atomically on the server side.
type Primary struct {
	cfg    PrimaryConfig
	client *http.Client
}

// NewPrimary creates the primary channel.
func NewPrimary(cfg PrimaryConfig) *Primary {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Primary{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the channel instance name.
func (p *Primary) Name() string { return "primary" }

// Kind returns KindPrimary.
func (p *Primary) Kind() Kind { return KindPrimary }

// SupportsRollback is true: the gateway wraps mutations in a transaction.
func (p *Primary) SupportsRollback() bool { return true }

// Validate checks the request against the operation schema before any side
// effect reaches a device.
func (p *Primary) Validate(ctx context.Context, req Request) error {
	if req.Device == "" {
		return NewValidationError(p.Name(), "device is required")
	}
	method, ok := knownOperations[req.Operation]
	if !ok {
		return NewValidationError(p.Name(), fmt.Sprintf("unknown operation %q", req.Operation))
	}
	if method != http.MethodGet && req.Payload == nil {
		return NewValidationError(p.Name(), fmt.Sprintf("operation %q requires a payload", req.Operation))
	}
	if req.Mutating && method == http.MethodGet {
		return NewValidationError(p.Name(), "mutating request mapped to read-only operation")
	}
	return nil
}

// Execute performs the request against the gateway. Failures are surfaced
// as typed errors for the orchestrator's degradation policy; no internal
// retry, no silent downgrade.
func (p *Primary) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := p.Validate(ctx, req); err != nil {
		return nil, err
	}

	method := knownOperations[req.Operation]
	endpoint := fmt.Sprintf("%s/data/devices/device=%s",
		strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(req.Device))

	var body io.Reader
	if req.Payload != nil {
		data, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, NewValidationError(p.Name(), fmt.Sprintf("payload not serializable: %v", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, NewProtocolError(p.Name(), "request build failed", err)
	}
	httpReq.Header.Set("Accept", "application/yang-data+json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/yang-data+json")
	}
	if p.cfg.Username != "" {
		httpReq.SetBasicAuth(p.cfg.Username, p.cfg.Password)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, wrapExecErr(p.Name(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(p.Name(), err)
	}
	if resp.StatusCode >= 400 {
		return nil, NewProtocolError(p.Name(),
			fmt.Sprintf("gateway returned %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(data))))
	}

	output := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &output); err != nil {
			output = map[string]any{"raw": string(data)}
		}
	}

	return &Response{
		Channel: p.Name(),
		Output:  output,
		Summary: fmt.Sprintf("%s %s on %s: %d", req.Operation, method, req.Device, resp.StatusCode),
	}, nil
}

// Health probes the gateway root.
func (p *Primary) Health(ctx context.Context) types.HealthStatus {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL, nil)
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return types.Unhealthy(fmt.Sprintf("gateway returned %d", resp.StatusCode))
	}
	return types.Healthy("")
}
