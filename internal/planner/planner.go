// Package planner is the collaborator boundary for plan generation. The
// orchestrator hands it a classified intent, a selected strategy, and the
// registered tool descriptors; it returns an ordered, feasibility-tagged
// plan. LLM planning is opaque to the state machine, and failures degrade to
// a minimal one-task plan built from the strategy's default tool.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/netauto-ai/conduit/internal/intent"
	"github.com/netauto-ai/conduit/internal/llm"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/tool"
	"github.com/netauto-ai/conduit/internal/types"
)

// Planner builds an execution plan for a request.
type Planner interface {
	BuildPlan(ctx context.Context, query string, in intent.Intent,
		strat strategy.Strategy, tools []tool.Descriptor) (*thread.Plan, error)
}

const planSystemPrompt = `You plan network operations requests into ordered tasks.
Each task uses exactly one of the available tools. Tag each task's
feasibility: "feasible" (a listed tool does it), "uncertain" (a listed tool
might do it), or "infeasible" (no listed tool can do it).

Respond with JSON only:
{"tasks": [{"description": "...", "feasibility": "...", "tool_name": "...",
"arguments": {...}}]}`

// LLMPlanner builds plans through a completion backend.
type LLMPlanner struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewLLMPlanner creates an LLM-backed planner.
func NewLLMPlanner(provider llm.Provider, logger *slog.Logger) *LLMPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMPlanner{provider: provider, logger: logger}
}

// BuildPlan asks the backend for a plan. The returned error is terminal for
// planning; the orchestrator decides whether to degrade to a fallback plan.
func (p *LLMPlanner) BuildPlan(ctx context.Context, query string, in intent.Intent,
	strat strategy.Strategy, tools []tool.Descriptor) (*thread.Plan, error) {

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", query)
	fmt.Fprintf(&b, "Intent: primary=%s secondary=%s\n", in.Primary, in.Secondary)
	fmt.Fprintf(&b, "Strategy: %s\n", strat)
	b.WriteString("Available tools:\n")
	for _, d := range tools {
		fmt.Fprintf(&b, "  - %s: %s", d.Name, d.Description)
		if len(d.InputSchema) > 0 {
			args := make([]string, 0, len(d.InputSchema))
			for name := range d.InputSchema {
				args = append(args, name)
			}
			fmt.Fprintf(&b, " (args: %s)", strings.Join(args, ", "))
		}
		b.WriteString("\n")
	}
	if strat == strategy.StrategyFastPath {
		b.WriteString("Produce exactly one task.\n")
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(planSystemPrompt),
			llm.NewUserMessage(b.String()),
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, types.WrapError(types.PLAN_BUILD_FAILED, "planning backend failed", err)
	}

	plan, err := parsePlanResponse(resp.Content, strat)
	if err != nil {
		return nil, types.WrapError(types.PLAN_PARSE_FAILED, "planning response unparseable", err)
	}
	return plan, nil
}

func parsePlanResponse(content string, strat strategy.Strategy) (*thread.Plan, error) {
	raw, err := llm.ExtractJSON(content)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Tasks []thread.Task `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	plan := &thread.Plan{Strategy: strat.String(), Tasks: parsed.Tasks}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// FallbackPlan is the minimal one-task degradation used when the planning
// collaborator fails: one uncertain task on the strategy's default tool.
func FallbackPlan(query string, strat strategy.Strategy, tools []tool.Descriptor) (*thread.Plan, error) {
	name := defaultToolFor(strat, tools)
	if name == "" {
		return nil, types.NewError(types.PLAN_BUILD_FAILED,
			fmt.Sprintf("no default tool available for strategy %s", strat))
	}
	return &thread.Plan{
		Strategy: strat.String(),
		Tasks: []thread.Task{{
			Description: query,
			Feasibility: thread.FeasibilityUncertain,
			ToolName:    name,
			Arguments:   map[string]any{"query": query},
		}},
	}, nil
}

// defaultToolFor picks the strategy's default tool: the first ungated tool
// for fast_path, otherwise the first registered tool.
func defaultToolFor(strat strategy.Strategy, tools []tool.Descriptor) string {
	if len(tools) == 0 {
		return ""
	}
	if strat == strategy.StrategyFastPath {
		for _, d := range tools {
			if !d.Gated {
				return d.Name
			}
		}
	}
	return tools[0].Name
}
