package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/tool"
)

const secondaryRollbackWarning = "secondary channel has no automatic rollback; " +
	"a partial failure must be remediated manually"

// runSteps executes plan tasks from the cursor until the plan completes or
// a gated action suspends the thread. The pending action is persisted
// before any side effect so a crash between suspension and approval loses
// nothing. Step failures do not stop the plan; later independent steps
// still run.
func (o *Orchestrator) runSteps(ctx context.Context, st *thread.State) error {
	for st.StepCursor < len(st.Plan.Tasks) {
		task := &st.Plan.Tasks[st.StepCursor]
		if task.Done {
			st.StepCursor++
			continue
		}

		if task.Feasibility == thread.FeasibilityInfeasible {
			st.Record(thread.InvocationRecord{
				ToolName:      task.ToolName,
				Arguments:     task.Arguments,
				ChannelUsed:   "none",
				ResultSummary: "skipped: no registered tool can perform this task",
				Timestamp:     time.Now().UTC(),
			})
			o.completeStep(st, task)
			if err := o.persist(ctx, st); err != nil {
				return err
			}
			continue
		}

		gated, err := o.stepGated(st, task)
		if err != nil {
			// Unknown tool: the step fails, the plan continues.
			o.recordFailure(st, task, "internal", err)
			o.completeStep(st, task)
			if err := o.persist(ctx, st); err != nil {
				return err
			}
			continue
		}
		if gated {
			pending := o.buildPending(st, task)
			if err := st.Interrupt(pending); err != nil {
				return o.fail(ctx, st, err)
			}
			if err := o.persist(ctx, st); err != nil {
				return err
			}
			o.logger.Info("thread suspended for approval",
				"thread_id", st.ThreadID,
				"tool", pending.ToolName,
				"channel", pending.Channel)
			return nil
		}

		interrupted, err := o.dispatch(ctx, st, task, task.Arguments, "")
		if err != nil {
			return err
		}
		if interrupted {
			return nil
		}
		o.completeStep(st, task)
		if err := o.persist(ctx, st); err != nil {
			return err
		}
	}
	return o.finish(ctx, st)
}

// stepGated reports whether the cursor step needs approval. A deep-dive
// plan always pauses before its first step so the approver can review the
// plan before anything runs.
func (o *Orchestrator) stepGated(st *thread.State, task *thread.Task) (bool, error) {
	if st.Strategy == strategy.StrategyDeepDive.String() && st.StepCursor == 0 && len(st.History) == 0 {
		if _, err := o.registry.Get(task.ToolName); err != nil {
			return false, err
		}
		return true, nil
	}
	return o.registry.RequiresApproval(task.ToolName, task.Arguments)
}

// buildPending constructs the resumption token for the cursor step.
func (o *Orchestrator) buildPending(st *thread.State, task *thread.Task) *thread.PendingAction {
	allowed := []thread.DecisionKind{
		thread.DecisionApprove, thread.DecisionEdit, thread.DecisionReject,
	}
	if reg, err := o.registry.Get(task.ToolName); err == nil && len(reg.AllowedDecisions) > 0 {
		allowed = reg.AllowedDecisions
	}
	return &thread.PendingAction{
		ToolName:         task.ToolName,
		Arguments:        task.Arguments,
		AllowedDecisions: allowed,
		TaskIndex:        st.StepCursor,
		Channel:          string(channel.KindPrimary),
		RequestedAt:      time.Now().UTC(),
	}
}

// dispatch executes one tool call for the cursor step. forceChannel names
// the channel an approval already committed to ("" lets the call start on
// the primary channel). Returns true when a degraded mutating call was
// re-gated and the thread is now interrupted.
func (o *Orchestrator) dispatch(ctx context.Context, st *thread.State, task *thread.Task,
	args map[string]any, forceChannel string) (bool, error) {

	ctx, cancel := context.WithTimeout(ctx, o.stepTimeout)
	defer cancel()

	reg, err := o.registry.Get(task.ToolName)
	if err != nil {
		o.recordFailure(st, task, "internal", err)
		return false, nil
	}

	ct, isChannelTool := reg.Tool.(tool.ChannelTool)
	if !isChannelTool {
		out, execErr := o.registry.Execute(ctx, task.ToolName, args)
		if execErr != nil {
			o.recordFailure(st, task, "internal", execErr)
			return false, nil
		}
		st.Record(thread.InvocationRecord{
			ToolName:      task.ToolName,
			Arguments:     args,
			ChannelUsed:   "internal",
			ResultSummary: outputSummary(out),
			Timestamp:     time.Now().UTC(),
		})
		return false, nil
	}

	req, err := ct.BuildRequest(args)
	if err != nil {
		o.recordFailure(st, task, "internal", err)
		return false, nil
	}

	ch := o.primary
	if forceChannel == string(channel.KindSecondary) {
		if o.secondary == nil {
			o.recordFailure(st, task, forceChannel,
				fmt.Errorf("no secondary channel configured"))
			return false, nil
		}
		ch = o.secondary
	}

	out, resp, execErr := o.registry.ExecuteVia(ctx, task.ToolName, ch, req)
	if execErr != nil && ch.Kind() == channel.KindPrimary &&
		channel.IsPrimaryFailure(execErr) && req.HasSecondaryEquivalent() && o.secondary != nil {

		o.logger.Warn("primary channel failed, degrading to secondary",
			"thread_id", st.ThreadID,
			"tool", task.ToolName,
			"device", req.Device,
			"error", execErr)

		if req.Mutating {
			// A mutating call may not silently move to a channel without
			// rollback. Re-gate: the approver must confirm again.
			pending := o.buildPending(st, task)
			pending.Arguments = args
			pending.Channel = string(channel.KindSecondary)
			pending.RollbackWarning = secondaryRollbackWarning
			if err := st.Interrupt(pending); err != nil {
				return false, o.fail(ctx, st, err)
			}
			if err := o.persist(ctx, st); err != nil {
				return false, err
			}
			return true, nil
		}
		ch = o.secondary
		out, resp, execErr = o.registry.ExecuteVia(ctx, task.ToolName, ch, req)
	}

	if execErr != nil {
		used := ch.Name()
		if resp != nil {
			used = resp.Channel
		}
		o.recordFailure(st, task, used, execErr)
		return false, nil
	}

	summary := outputSummary(out)
	if resp != nil && resp.Summary != "" {
		summary = resp.Summary
	}
	st.Record(thread.InvocationRecord{
		ToolName:      task.ToolName,
		Arguments:     args,
		ChannelUsed:   resp.Channel,
		ResultSummary: summary,
		Timestamp:     time.Now().UTC(),
	})
	return false, nil
}

// completeStep marks the cursor task done and advances the cursor.
func (o *Orchestrator) completeStep(st *thread.State, task *thread.Task) {
	task.Done = true
	st.StepCursor++
}

func (o *Orchestrator) recordFailure(st *thread.State, task *thread.Task, channelUsed string, err error) {
	o.logger.Warn("step failed",
		"thread_id", st.ThreadID, "tool", task.ToolName, "error", err)
	st.Record(thread.InvocationRecord{
		ToolName:      task.ToolName,
		Arguments:     task.Arguments,
		ChannelUsed:   channelUsed,
		ResultSummary: fmt.Sprintf("failed: %v", err),
		Failed:        true,
		Timestamp:     time.Now().UTC(),
	})
}

// finish transitions a fully executed plan to its terminal stage.
func (o *Orchestrator) finish(ctx context.Context, st *thread.State) error {
	st.FinalMessage = finalMessage(st)
	if err := st.Transition(thread.StageCompleted); err != nil {
		return o.fail(ctx, st, err)
	}
	if err := o.persist(ctx, st); err != nil {
		return err
	}
	o.logger.Info("thread completed",
		"thread_id", st.ThreadID, "steps", len(st.History))
	return nil
}

// finalMessage summarizes the run for the caller.
func finalMessage(st *thread.State) string {
	succeeded, failed := 0, 0
	last := ""
	for _, rec := range st.History {
		if rec.Failed {
			failed++
			continue
		}
		succeeded++
		last = rec.ResultSummary
	}
	switch {
	case failed == 0 && last != "":
		return fmt.Sprintf("completed %d step(s): %s", succeeded, last)
	case failed == 0:
		return "completed with no steps executed"
	default:
		return fmt.Sprintf("completed with %d step(s) succeeded, %d failed", succeeded, failed)
	}
}

// outputSummary extracts a short result description from tool output.
func outputSummary(out map[string]any) string {
	if s, ok := out["summary"].(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("ok (%d output field(s))", len(out))
}

// pendingReason explains why the thread paused.
func pendingReason(st *thread.State) string {
	if st.Pending == nil {
		return ""
	}
	if st.Pending.RollbackWarning != "" {
		return "primary channel unavailable; approval required to retry on the secondary channel"
	}
	if st.Strategy == strategy.StrategyDeepDive.String() && len(st.History) == 0 && st.StepCursor == 0 {
		return "plan review before the first supervised step"
	}
	return "approval required before a state-changing operation"
}
