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
)

// GatewayRunner is a CommandRunner backed by a terminal-gateway HTTP API.
// Each Run opens a one-shot session on the gateway, executes the command,
// and returns the captured output.
type GatewayRunner struct {
	baseURL string
	client  *http.Client
}

// NewGatewayRunner creates a runner against the given gateway endpoint.
func NewGatewayRunner(baseURL string, timeout time.Duration) *GatewayRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GatewayRunner{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Run executes one command on the device through the gateway.
func (g *GatewayRunner) Run(ctx context.Context, device, command string) (string, error) {
	body, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/sessions/%s/commands", g.baseURL, url.PathEscape(device))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gateway returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Output != "" {
		return parsed.Output, nil
	}
	return string(data), nil
}
