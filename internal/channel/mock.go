package channel

import (
	"context"
	"sync"

	"github.com/netauto-ai/conduit/internal/types"
)

// Mock is a scripted Channel for tests and dry runs. Each Execute pops the
// next scripted outcome; an exhausted script succeeds with an empty response.
type Mock struct {
	mu   sync.Mutex
	name string
	kind Kind

	// Err fails every Execute when set, taking precedence over the script.
	Err error
	// ValidateErr fails Validate when set.
	ValidateErr error

	script []Response
	index  int
	calls  []Request
}

// NewMock creates a mock channel of the given kind.
func NewMock(name string, kind Kind) *Mock {
	return &Mock{name: name, kind: kind}
}

// Script appends scripted responses returned by successive Execute calls.
func (m *Mock) Script(responses ...Response) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
	return m
}

// Name returns the mock's name.
func (m *Mock) Name() string { return m.name }

// Kind returns the mock's kind.
func (m *Mock) Kind() Kind { return m.kind }

// SupportsRollback mirrors the real channels: only primary rolls back.
func (m *Mock) SupportsRollback() bool { return m.kind == KindPrimary }

// Validate returns ValidateErr.
func (m *Mock) Validate(ctx context.Context, req Request) error {
	return m.ValidateErr
}

// Execute records the call and returns the next scripted response or Err.
func (m *Mock) Execute(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.index < len(m.script) {
		resp := m.script[m.index]
		m.index++
		if resp.Channel == "" {
			resp.Channel = m.name
		}
		return &resp, nil
	}
	return &Response{Channel: m.name, Summary: "ok"}, nil
}

// Health always reports healthy.
func (m *Mock) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock channel")
}

// Calls returns a copy of recorded requests.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
