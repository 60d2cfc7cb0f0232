package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto-ai/conduit/internal/intent"
	"github.com/netauto-ai/conduit/internal/llm"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/tool"
)

var testTools = []tool.Descriptor{
	{Name: "show_command", Description: "runs a read-only show command", InputSchema: map[string]string{"device": "target device", "command": "command"}},
	{Name: "config_apply", Description: "applies a config change", Gated: true},
}

func TestLLMPlanner_BuildPlan(t *testing.T) {
	provider := llm.NewMockProvider(`{
		"tasks": [
			{"description": "collect interface state", "feasibility": "feasible",
			 "tool_name": "show_command",
			 "arguments": {"device": "R1", "command": "show interfaces"}},
			{"description": "remove interface config", "feasibility": "uncertain",
			 "tool_name": "config_apply",
			 "arguments": {"device": "R1"}}
		]
	}`)
	p := NewLLMPlanner(provider, nil)

	plan, err := p.BuildPlan(t.Context(), "delete interface Gi0/1 on R1",
		intent.Intent{Primary: intent.CategoryConfig, RequiresHITL: true},
		strategy.StrategyDeepDive, testTools)
	require.NoError(t, err)
	require.Len(t, plan.Tasks, 2)
	assert.Equal(t, "deep_dive", plan.Strategy)
	assert.Equal(t, "show_command", plan.Tasks[0].ToolName)
	assert.Equal(t, thread.FeasibilityUncertain, plan.Tasks[1].Feasibility)

	// The prompt includes the tool catalogue.
	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[1].Content, "config_apply")
}

func TestLLMPlanner_BackendFailure(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.Err = fmt.Errorf("unreachable")
	p := NewLLMPlanner(provider, nil)

	_, err := p.BuildPlan(t.Context(), "q", intent.Intent{Primary: intent.CategoryQuery},
		strategy.StrategyFastPath, testTools)
	assert.Error(t, err)
}

func TestLLMPlanner_UnparseableResponse(t *testing.T) {
	p := NewLLMPlanner(llm.NewMockProvider("no plan today"), nil)

	_, err := p.BuildPlan(t.Context(), "q", intent.Intent{Primary: intent.CategoryQuery},
		strategy.StrategyFastPath, testTools)
	assert.Error(t, err)
}

func TestFallbackPlan(t *testing.T) {
	plan, err := FallbackPlan("show version", strategy.StrategyFastPath, testTools)
	require.NoError(t, err)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "show_command", plan.Tasks[0].ToolName, "fast_path prefers an ungated tool")
	assert.Equal(t, thread.FeasibilityUncertain, plan.Tasks[0].Feasibility)

	_, err = FallbackPlan("q", strategy.StrategyFastPath, nil)
	assert.Error(t, err)
}

func TestInspectionPlan(t *testing.T) {
	profiles := []InspectionProfile{{
		Name:    "daily-baseline",
		Tool:    "show_command",
		Devices: []string{"R1", "R2"},
		Checks: []InspectionCheck{
			{Name: "bgp-sessions", Operation: "get", Arguments: map[string]any{"path": "bgp/neighbors"}},
			{Name: "interface-errors", Operation: "get"},
		},
	}}

	plan, err := InspectionPlan(profiles)
	require.NoError(t, err)
	assert.Len(t, plan.Tasks, 4)
	assert.Equal(t, "inspection", plan.Strategy)
	assert.Equal(t, "R1", plan.Tasks[0].Arguments["device"])
	assert.Equal(t, "bgp/neighbors", plan.Tasks[0].Arguments["path"])

	_, err = InspectionPlan(nil)
	assert.Error(t, err)
}

func TestLoadInspectionProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - name: daily-baseline
    description: fleet-wide health checks
    tool: show_command
    devices: [R1, R2]
    checks:
      - name: bgp-sessions
        operation: get
`), 0o644))

	profiles, err := LoadInspectionProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "daily-baseline", profiles[0].Name)
	assert.Equal(t, []string{"R1", "R2"}, profiles[0].Devices)

	_, err = LoadInspectionProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
