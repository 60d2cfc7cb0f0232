package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/tool"
	"github.com/netauto-ai/conduit/internal/types"
)

// registerDeviceTool adds the channel-aware test tool, gated on the
// "mutating" argument.
func registerDeviceTool(t *testing.T, h *harness, gated bool) {
	t.Helper()
	reg := tool.Registration{Tool: deviceTool{name: "device_op"}}
	if gated {
		reg.Gate = tool.MutatesConfig
	}
	require.NoError(t, h.registry.Register(reg))
}

func deviceTaskPlan(args map[string]any) *thread.Plan {
	return singleTaskPlan("device_op", args)
}

func TestDispatch_ReadOnlyRunsOnPrimary(t *testing.T) {
	args := map[string]any{"device": "r1", "operation": "get", "command": "show interfaces"}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, true)
	h.primary.Script(channel.Response{Summary: "2 interfaces up"})

	res, err := h.orch.Route(t.Context(), "show interfaces on r1", types.NewID())
	require.NoError(t, err)

	assert.Equal(t, thread.StageCompleted, res.Stage)
	assert.Len(t, h.primary.Calls(), 1)
	assert.Empty(t, h.secondary.Calls())

	st, err := h.store.Get(t.Context(), types.ID(res.ThreadID))
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.Equal(t, "primary", st.History[0].ChannelUsed)
	assert.Equal(t, "2 interfaces up", st.History[0].ResultSummary)
}

func TestDispatch_ReadOnlyDegradesWithoutReapproval(t *testing.T) {
	args := map[string]any{"device": "r1", "operation": "get", "command": "show interfaces"}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, true)
	h.primary.Err = channel.NewTransportError("primary", assert.AnError)
	h.secondary.Script(channel.Response{Summary: "raw output captured"})

	res, err := h.orch.Route(t.Context(), "show interfaces on r1", types.NewID())
	require.NoError(t, err)

	assert.Equal(t, thread.StageCompleted, res.Stage)
	assert.False(t, res.Interrupted, "read-only degradation needs no approval")

	st, err := h.store.Get(t.Context(), types.ID(res.ThreadID))
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.Equal(t, "secondary", st.History[0].ChannelUsed)
	assert.False(t, st.History[0].Failed)
}

func TestDispatch_DegradedFailureRecordsSecondaryChannel(t *testing.T) {
	args := map[string]any{"device": "r1", "operation": "get", "command": "show interfaces"}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, true)
	h.primary.Err = channel.NewTransportError("primary", assert.AnError)
	h.secondary.Err = channel.NewTransportError("secondary", assert.AnError)

	res, err := h.orch.Route(t.Context(), "show interfaces on r1", types.NewID())
	require.NoError(t, err)
	assert.Equal(t, thread.StageCompleted, res.Stage)
	assert.Len(t, h.secondary.Calls(), 1)

	// The record names the channel the call actually failed on.
	st, err := h.store.Get(t.Context(), types.ID(res.ThreadID))
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.True(t, st.History[0].Failed)
	assert.Equal(t, "secondary", st.History[0].ChannelUsed)
}

func TestDispatch_MutatingDegradationRequiresReapproval(t *testing.T) {
	args := map[string]any{
		"device": "r1", "operation": "merge-config", "mutating": true,
		"command": "configure terminal", "payload": map[string]any{"mtu": float64(9000)},
	}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, true)
	h.primary.Err = channel.NewTransportError("primary", assert.AnError)
	h.secondary.Script(channel.Response{Summary: "config pushed over session"})

	threadID := types.NewID()
	res, err := h.orch.Route(t.Context(), "set mtu 9000 on r1", threadID)
	require.NoError(t, err)
	require.True(t, res.Interrupted)

	// First approval: the call goes to the primary channel and fails, so
	// the thread suspends again asking to continue on the secondary.
	resumed, err := h.orch.Resume(t.Context(), threadID, "approve", "")
	require.NoError(t, err)
	require.True(t, resumed.Interrupted, "mutating degradation must re-gate")
	require.NotNil(t, resumed.Pending)
	assert.Equal(t, "secondary", resumed.Pending.Channel)
	assert.NotEmpty(t, resumed.Pending.RollbackWarning)
	assert.Empty(t, h.secondary.Calls(), "nothing ran on the secondary channel yet")

	st, err := h.store.Get(t.Context(), threadID)
	require.NoError(t, err)
	require.NoError(t, st.Validate())
	assert.Equal(t, thread.StageInterrupted, st.Stage)

	// Second approval commits to the secondary channel.
	final, err := h.orch.Resume(t.Context(), threadID, "approve", "")
	require.NoError(t, err)
	assert.Equal(t, thread.StageCompleted, final.Stage)
	assert.Len(t, h.secondary.Calls(), 1)

	st, err = h.store.Get(t.Context(), threadID)
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.Equal(t, "secondary", st.History[0].ChannelUsed)
}

func TestDispatch_MutatingDegradationCanBeRejected(t *testing.T) {
	args := map[string]any{
		"device": "r1", "operation": "merge-config", "mutating": true,
		"command": "configure terminal",
	}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, true)
	h.primary.Err = channel.NewTransportError("primary", assert.AnError)

	threadID := types.NewID()
	_, err := h.orch.Route(t.Context(), "change config on r1", threadID)
	require.NoError(t, err)

	resumed, err := h.orch.Resume(t.Context(), threadID, "approve", "")
	require.NoError(t, err)
	require.True(t, resumed.Interrupted)

	final, err := h.orch.Resume(t.Context(), threadID, "reject not over a raw session", "")
	require.NoError(t, err)
	assert.True(t, final.Aborted)
	assert.Empty(t, h.secondary.Calls())
}

func TestDispatch_NoSecondaryEquivalentFailsStep(t *testing.T) {
	// No command argument: the operation cannot be degraded.
	args := map[string]any{"device": "r1", "operation": "get"}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, false)
	h.primary.Err = channel.NewTransportError("primary", assert.AnError)

	res, err := h.orch.Route(t.Context(), "show things on r1", types.NewID())
	require.NoError(t, err)
	assert.Equal(t, thread.StageCompleted, res.Stage)
	assert.Empty(t, h.secondary.Calls())

	st, err := h.store.Get(t.Context(), types.ID(res.ThreadID))
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.True(t, st.History[0].Failed)
}

func TestDispatch_ValidationFailureDoesNotDegrade(t *testing.T) {
	args := map[string]any{"device": "r1", "operation": "get", "command": "show interfaces"}
	h := newHarness(t, withPlan(deviceTaskPlan(args)))
	registerDeviceTool(t, h, false)
	h.primary.ValidateErr = channel.NewValidationError("primary", "unknown leaf node")

	res, err := h.orch.Route(t.Context(), "show things on r1", types.NewID())
	require.NoError(t, err)
	assert.Equal(t, thread.StageCompleted, res.Stage)
	assert.Empty(t, h.primary.Calls(), "validation rejects before any side effect")
	assert.Empty(t, h.secondary.Calls(), "validation failures are not transport failures")

	st, err := h.store.Get(t.Context(), types.ID(res.ThreadID))
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.True(t, st.History[0].Failed)
}

func TestDispatch_DeepDivePausesForPlanReview(t *testing.T) {
	plan := &thread.Plan{
		Strategy: "deep_dive",
		Tasks: []thread.Task{
			{Description: "gather state", Feasibility: thread.FeasibilityFeasible,
				ToolName: "show_version", Arguments: map[string]any{"device": "r1"}},
			{Description: "check neighbors", Feasibility: thread.FeasibilityFeasible,
				ToolName: "show_version", Arguments: map[string]any{"device": "r2"}},
		},
	}
	h := newHarness(t, withPlan(plan), withStrategy(strategy.StrategyDeepDive))
	calls := h.countingTool(t, "show_version", nil)

	threadID := types.NewID()
	res, err := h.orch.Route(t.Context(), "why is r1 flapping", threadID)
	require.NoError(t, err)

	require.True(t, res.Interrupted, "deep dive pauses before the first step")
	assert.Equal(t, int64(0), calls.Load())

	final, err := h.orch.Resume(t.Context(), threadID, "approve", "")
	require.NoError(t, err)
	assert.Equal(t, thread.StageCompleted, final.Stage)
	assert.Equal(t, int64(2), calls.Load(), "remaining ungated steps run without pausing")
}
