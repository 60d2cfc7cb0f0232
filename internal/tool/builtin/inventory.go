package builtin

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

// InventoryConfig configures the inventory API client.
type InventoryConfig struct {
	// BaseURL is the inventory service endpoint.
	BaseURL string `yaml:"base_url"`
	// Token is an optional bearer token.
	Token string `yaml:"token,omitempty"`
	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// Inventory queries and updates the device inventory service. Reads are
// ungated; mutating HTTP methods are gated by the registry.
type Inventory struct {
	cfg    InventoryConfig
	client *http.Client
}

// NewInventory creates the inventory tool.
func NewInventory(cfg InventoryConfig) *Inventory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Inventory{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (i *Inventory) Name() string { return "inventory" }

func (i *Inventory) Description() string {
	return "Query or update the device inventory service (devices, sites, roles)."
}

func (i *Inventory) InputSchema() map[string]string {
	return map[string]string{
		"path":   "API path, e.g. \"/devices\" or \"/devices/r1\"",
		"method": "HTTP method, defaults to GET; mutating methods require approval",
		"body":   "JSON body for mutating calls",
	}
}

func (i *Inventory) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	path := argString(args, "path")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	method := strings.ToUpper(argString(args, "method"))
	if method == "" {
		method = http.MethodGet
	}

	endpoint, err := url.JoinPath(strings.TrimRight(i.cfg.BaseURL, "/"), path)
	if err != nil {
		return nil, fmt.Errorf("bad inventory path %q: %w", path, err)
	}

	var body io.Reader
	if raw, ok := args["body"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("body not serializable: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if i.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+i.cfg.Token)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("inventory response read failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("inventory returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			parsed = string(data)
		}
	}
	return map[string]any{
		"summary": fmt.Sprintf("%s %s: %d", method, path, resp.StatusCode),
		"result":  parsed,
	}, nil
}
