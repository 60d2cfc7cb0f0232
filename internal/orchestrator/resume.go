package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/netauto-ai/conduit/internal/checkpoint"
	"github.com/netauto-ai/conduit/internal/config"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/types"
)

// parsedInput is the interpreted operator response to a pending action.
type parsedInput struct {
	decision thread.Decision
	abort    bool
}

// parseUserInput interprets free-text operator input as a decision. The
// first word selects the verb; "edit" takes a JSON object of replacement
// arguments, "reject" takes an optional reason.
func parseUserInput(input string) (parsedInput, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return parsedInput{}, types.NewError(types.THREAD_INVALID_INPUT,
			"empty input: expected approve, edit {json}, reject [reason], or abort")
	}
	verb, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "approve", "yes", "y":
		return parsedInput{decision: thread.Decision{Kind: thread.DecisionApprove}}, nil
	case "reject", "no", "n":
		return parsedInput{decision: thread.Decision{Kind: thread.DecisionReject, Reason: rest}}, nil
	case "edit":
		if rest == "" {
			return parsedInput{}, types.NewError(types.THREAD_INVALID_INPUT,
				"edit requires a JSON object of replacement arguments")
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(rest), &args); err != nil {
			return parsedInput{}, types.NewError(types.THREAD_INVALID_INPUT,
				fmt.Sprintf("edit arguments are not valid JSON: %v", err))
		}
		return parsedInput{decision: thread.Decision{Kind: thread.DecisionEdit, EditedArguments: args}}, nil
	case "abort":
		return parsedInput{abort: true}, nil
	default:
		return parsedInput{}, types.NewError(types.THREAD_INVALID_INPUT,
			fmt.Sprintf("unrecognized decision %q: expected approve, edit {json}, reject [reason], or abort", verb))
	}
}

// Resume applies an operator decision to an interrupted thread and continues
// execution. Invalid input leaves the thread state untouched; the caller can
// retry with corrected input. workflowType, when non-empty, must match the
// strategy recorded at routing time.
func (o *Orchestrator) Resume(ctx context.Context, threadID types.ID, userInput, workflowType string) (*ResumeResult, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.Resume",
		trace.WithAttributes(attribute.String("thread.id", threadID.String())))
	defer span.End()

	if !o.locks.acquire(threadID) {
		return nil, types.NewError(types.THREAD_BUSY,
			fmt.Sprintf("thread %s has an operation in flight", threadID))
	}
	defer o.locks.release(threadID)

	st, err := o.loadInterrupted(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if workflowType != "" && workflowType != st.Strategy {
		return nil, types.NewError(types.THREAD_INVALID_INPUT,
			fmt.Sprintf("workflow type %q does not match thread strategy %q", workflowType, st.Strategy))
	}

	parsed, err := parseUserInput(userInput)
	if err != nil {
		return nil, err
	}
	if parsed.abort {
		return o.abortState(ctx, st, "aborted by operator")
	}
	if !st.Pending.Allows(parsed.decision.Kind) {
		return nil, types.NewError(types.THREAD_INVALID_INPUT,
			fmt.Sprintf("decision %q is not allowed for this action (allowed: %v)",
				parsed.decision.Kind, st.Pending.AllowedDecisions))
	}

	pending := st.Pending
	if err := o.transition(ctx, st, thread.StageResuming); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("decision", string(parsed.decision.Kind)))
	o.logger.Info("thread resuming",
		"thread_id", st.ThreadID,
		"decision", parsed.decision.Kind,
		"tool", pending.ToolName)

	switch parsed.decision.Kind {
	case thread.DecisionReject:
		return o.applyReject(ctx, st, pending, parsed.decision.Reason)
	default:
		return o.applyApproval(ctx, st, pending, parsed.decision)
	}
}

// loadInterrupted fetches the thread and checks it can take a decision.
func (o *Orchestrator) loadInterrupted(ctx context.Context, threadID types.ID) (*thread.State, error) {
	st, err := o.store.Get(ctx, threadID)
	if err != nil {
		if types.ErrorCodeOf(err) == types.CHECKPOINT_NOT_FOUND {
			return nil, types.NewError(types.THREAD_NOT_FOUND,
				fmt.Sprintf("thread %s not found", threadID))
		}
		return nil, err
	}
	if st.Stage.IsTerminal() {
		return nil, types.NewError(types.THREAD_TERMINAL,
			fmt.Sprintf("thread %s is %s and accepts no decisions", threadID, st.Stage))
	}
	if st.Stage != thread.StageInterrupted || st.Pending == nil {
		return nil, types.NewError(types.THREAD_NOT_INTERRUPTED,
			fmt.Sprintf("thread %s is %s, not awaiting a decision", threadID, st.Stage))
	}
	return st, nil
}

// applyApproval executes the pending action with original or edited
// arguments and continues the plan.
func (o *Orchestrator) applyApproval(ctx context.Context, st *thread.State,
	pending *thread.PendingAction, dec thread.Decision) (*ResumeResult, error) {

	args := pending.Arguments
	if dec.Kind == thread.DecisionEdit {
		args = dec.EditedArguments
	}

	if pending.TaskIndex >= len(st.Plan.Tasks) {
		return nil, o.fail(ctx, st, fmt.Errorf("pending task index %d out of range", pending.TaskIndex))
	}
	task := &st.Plan.Tasks[pending.TaskIndex]
	task.Arguments = args

	interrupted, err := o.dispatch(ctx, st, task, args, pending.Channel)
	if err != nil {
		return nil, err
	}
	if interrupted {
		return o.resumeResult(st), nil
	}

	o.completeStep(st, task)
	if err := o.transition(ctx, st, thread.StageExecuting); err != nil {
		return nil, err
	}
	if err := o.runSteps(ctx, st); err != nil {
		return nil, err
	}
	return o.resumeResult(st), nil
}

// applyReject records the refusal and applies the reject policy: abort the
// thread or skip the step and continue.
func (o *Orchestrator) applyReject(ctx context.Context, st *thread.State,
	pending *thread.PendingAction, reason string) (*ResumeResult, error) {

	summary := "rejected by operator"
	if reason != "" {
		summary = fmt.Sprintf("rejected by operator: %s", reason)
	}
	st.Record(thread.InvocationRecord{
		ToolName:      pending.ToolName,
		Arguments:     pending.Arguments,
		ChannelUsed:   "none",
		ResultSummary: summary,
		Timestamp:     time.Now().UTC(),
	})

	policy := o.rejectPolicy
	if reg, err := o.registry.Get(pending.ToolName); err == nil && reg.RejectAborts != nil {
		if *reg.RejectAborts {
			policy = config.RejectPolicyAbort
		} else {
			policy = config.RejectPolicySkip
		}
	}

	if policy == config.RejectPolicyAbort {
		return o.abortState(ctx, st, summary)
	}

	if pending.TaskIndex < len(st.Plan.Tasks) {
		o.completeStep(st, &st.Plan.Tasks[pending.TaskIndex])
	}
	if err := o.transition(ctx, st, thread.StageExecuting); err != nil {
		return nil, err
	}
	if err := o.runSteps(ctx, st); err != nil {
		return nil, err
	}
	return o.resumeResult(st), nil
}

// Abort terminates a non-terminal thread without executing anything further.
func (o *Orchestrator) Abort(ctx context.Context, threadID types.ID, reason string) (*ResumeResult, error) {
	if !o.locks.acquire(threadID) {
		return nil, types.NewError(types.THREAD_BUSY,
			fmt.Sprintf("thread %s has an operation in flight", threadID))
	}
	defer o.locks.release(threadID)

	st, err := o.store.Get(ctx, threadID)
	if err != nil {
		if types.ErrorCodeOf(err) == types.CHECKPOINT_NOT_FOUND {
			return nil, types.NewError(types.THREAD_NOT_FOUND,
				fmt.Sprintf("thread %s not found", threadID))
		}
		return nil, err
	}
	if st.Stage.IsTerminal() {
		return nil, types.NewError(types.THREAD_TERMINAL,
			fmt.Sprintf("thread %s is already %s", threadID, st.Stage))
	}
	message := "aborted by operator"
	if reason != "" {
		message = fmt.Sprintf("aborted by operator: %s", reason)
	}
	return o.abortState(ctx, st, message)
}

func (o *Orchestrator) abortState(ctx context.Context, st *thread.State, message string) (*ResumeResult, error) {
	st.FinalMessage = message
	if err := o.transition(ctx, st, thread.StageAborted); err != nil {
		return nil, err
	}
	o.logger.Info("thread aborted", "thread_id", st.ThreadID, "reason", message)
	return o.resumeResult(st), nil
}

func (o *Orchestrator) resumeResult(st *thread.State) *ResumeResult {
	res := &ResumeResult{
		ThreadID:     st.ThreadID.String(),
		Stage:        st.Stage,
		Interrupted:  st.Stage == thread.StageInterrupted,
		Aborted:      st.Stage == thread.StageAborted,
		FinalMessage: st.FinalMessage,
	}
	if st.Pending != nil {
		res.Pending = pendingSummary(st.Pending, pendingReason(st))
	}
	return res
}

// Threads lists persisted thread summaries.
func (o *Orchestrator) Threads(ctx context.Context) ([]checkpoint.Summary, error) {
	return o.store.List(ctx)
}

// Thread returns the full persisted state of one thread.
func (o *Orchestrator) Thread(ctx context.Context, threadID types.ID) (*thread.State, error) {
	st, err := o.store.Get(ctx, threadID)
	if err != nil && types.ErrorCodeOf(err) == types.CHECKPOINT_NOT_FOUND {
		return nil, types.NewError(types.THREAD_NOT_FOUND,
			fmt.Sprintf("thread %s not found", threadID))
	}
	return st, err
}

// Purge removes threads idle longer than ttl.
func (o *Orchestrator) Purge(ctx context.Context, ttl time.Duration) (int, error) {
	return o.store.PurgeExpired(ctx, ttl)
}
