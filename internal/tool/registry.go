package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

// Registry is the thread-safe tool gateway. It owns registrations, gating
// evaluation, and per-tool execution metrics.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
	metrics map[string]*Metrics
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Registration),
		metrics: make(map[string]*Metrics),
	}
}

// Register adds a tool with its gating policy.
func (r *Registry) Register(reg Registration) error {
	if reg.Tool == nil {
		return types.NewError(types.TOOL_INVALID_INPUT, "tool cannot be nil")
	}
	name := reg.Tool.Name()
	if name == "" {
		return types.NewError(types.TOOL_INVALID_INPUT, "tool name cannot be empty")
	}
	if reg.Gate != nil && len(reg.AllowedDecisions) == 0 {
		reg.AllowedDecisions = []thread.DecisionKind{
			thread.DecisionApprove, thread.DecisionEdit, thread.DecisionReject,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return types.NewError(types.TOOL_ALREADY_EXISTS,
			fmt.Sprintf("tool %q already registered", name))
	}
	r.entries[name] = &reg
	r.metrics[name] = &Metrics{}
	return nil
}

// Get retrieves a registration by tool name.
func (r *Registry) Get(name string) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[name]
	if !ok {
		return nil, types.NewError(types.TOOL_NOT_FOUND,
			fmt.Sprintf("tool %q not found", name))
	}
	return reg, nil
}

// List returns descriptors for all registered tools, sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.entries))
	for name, reg := range r.entries {
		out = append(out, Descriptor{
			Name:             name,
			Description:      reg.Tool.Description(),
			InputSchema:      reg.Tool.InputSchema(),
			Gated:            reg.Gate != nil,
			AllowedDecisions: reg.AllowedDecisions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RequiresApproval evaluates the gating predicate for a call. A predicate
// error is treated as gated: the fail-safe is to request approval rather
// than silently execute.
func (r *Registry) RequiresApproval(name string, args map[string]any) (bool, error) {
	reg, err := r.Get(name)
	if err != nil {
		return false, err
	}
	if reg.Gate == nil {
		return false, nil
	}
	gated, gateErr := reg.Gate(args)
	if gateErr != nil {
		return true, nil
	}
	return gated, nil
}

// Execute runs a tool by name, recording metrics. Gating is the caller's
// responsibility; Execute performs the call unconditionally.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	reg, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	m := r.metrics[name]
	r.mu.RUnlock()

	start := time.Now()
	out, execErr := reg.Tool.Execute(ctx, args)
	if m != nil {
		m.record(time.Since(start), execErr != nil)
	}
	if execErr != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR,
			fmt.Sprintf("tool %q failed", name), execErr)
	}
	return out, nil
}

// Metrics returns the metrics snapshot for a tool.
func (r *Registry) Metrics(name string) (MetricsSnapshot, error) {
	r.mu.RLock()
	m, ok := r.metrics[name]
	r.mu.RUnlock()
	if !ok {
		return MetricsSnapshot{}, types.NewError(types.TOOL_NOT_FOUND,
			fmt.Sprintf("tool %q not found", name))
	}
	return m.Snapshot(), nil
}
