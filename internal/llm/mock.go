package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/netauto-ai/conduit/internal/types"
)

// MockProvider implements Provider for tests. Responses are returned in
// order, cycling when exhausted. A non-nil Err fails every call.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	index     int
	calls     []CompletionRequest

	// Err, when set, is returned by every Complete call.
	Err error
	// Delay, when set, is how long Complete blocks before responding,
	// honoring ctx cancellation.
	Delay func(ctx context.Context) error
}

// NewMockProvider creates a mock provider with canned responses.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// Name returns "mock".
func (p *MockProvider) Name() string { return "mock" }

// Complete returns the next canned response or the configured error.
func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.Delay != nil {
		if err := p.Delay(ctx); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.responses) == 0 {
		return nil, fmt.Errorf("mock provider has no responses configured")
	}
	resp := p.responses[p.index%len(p.responses)]
	p.index++

	return &CompletionResponse{Model: "mock-model", Content: resp}, nil
}

// Health always reports healthy.
func (p *MockProvider) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock provider")
}

// Calls returns a copy of all recorded requests.
func (p *MockProvider) Calls() []CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CompletionRequest, len(p.calls))
	copy(out, p.calls)
	return out
}
