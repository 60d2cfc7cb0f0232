// Package tool is the gateway between the orchestrator and invokable
// operations. Every tool is registered with an optional gating predicate and
// a set of allowed human decisions; the orchestrator evaluates the predicate
// before every dispatch and suspends the thread when it fires.
package tool

import (
	"context"

	"github.com/netauto-ai/conduit/internal/thread"
)

// Tool is an atomic invokable operation.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string

	// Description returns a human-readable description used in planning
	// prompts.
	Description() string

	// InputSchema describes the expected arguments, keyed by argument name.
	InputSchema() map[string]string

	// Execute runs the tool. Context carries cancellation and deadlines.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// GatePredicate decides whether a call with the given arguments requires
// approval. It must be pure and side-effect free; a returned error is
// treated as "gated" (fail-safe).
type GatePredicate func(args map[string]any) (bool, error)

// Descriptor summarizes a registered tool for planning and listing.
type Descriptor struct {
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	InputSchema      map[string]string     `json:"input_schema,omitempty"`
	Gated            bool                  `json:"gated"`
	AllowedDecisions []thread.DecisionKind `json:"allowed_decisions,omitempty"`
}

// Registration binds a tool to its gating policy.
type Registration struct {
	Tool Tool
	// Gate is the optional gating predicate. Nil means the tool is trusted
	// and executes immediately.
	Gate GatePredicate
	// AllowedDecisions is the decision set offered to the approver when the
	// gate fires. Defaults to approve/edit/reject when empty and a gate is
	// present.
	AllowedDecisions []thread.DecisionKind
	// RejectAborts overrides the workflow-level reject policy for this tool:
	// nil inherits, true aborts the thread, false skips the step.
	RejectAborts *bool
}

// FuncTool adapts plain functions to the Tool interface.
type FuncTool struct {
	name        string
	description string
	schema      map[string]string
	fn          func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// NewFuncTool creates a Tool from a function.
func NewFuncTool(name, description string, schema map[string]string,
	fn func(ctx context.Context, args map[string]any) (map[string]any, error)) *FuncTool {
	return &FuncTool{name: name, description: description, schema: schema, fn: fn}
}

func (t *FuncTool) Name() string                   { return t.name }
func (t *FuncTool) Description() string            { return t.description }
func (t *FuncTool) InputSchema() map[string]string { return t.schema }

func (t *FuncTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	return t.fn(ctx, args)
}
