// Package orchestrator drives the thread workflow state machine: intent
// classification, strategy selection, planning, and gated step execution
// with durable checkpoints. Every externally visible transition is persisted
// before its side effect, so an interrupted thread survives a process
// restart and resumes from its pending action.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/checkpoint"
	"github.com/netauto-ai/conduit/internal/config"
	"github.com/netauto-ai/conduit/internal/intent"
	"github.com/netauto-ai/conduit/internal/planner"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/thread"
	"github.com/netauto-ai/conduit/internal/tool"
	"github.com/netauto-ai/conduit/internal/types"
)

const tracerName = "github.com/netauto-ai/conduit/internal/orchestrator"

// Orchestrator coordinates the collaborators around the durable thread
// state. It holds no per-thread state of its own beyond the busy set; the
// checkpoint store is the single source of truth.
type Orchestrator struct {
	classifier intent.Classifier
	selector   *strategy.Selector
	planner    planner.Planner
	registry   *tool.Registry
	primary    channel.Channel
	secondary  channel.Channel
	store      checkpoint.Store

	rejectPolicy config.RejectPolicy
	stepTimeout  time.Duration

	locks  *threadLocks
	logger *slog.Logger
	tracer trace.Tracer
}

// Options configures an Orchestrator.
type Options struct {
	Classifier intent.Classifier
	Selector   *strategy.Selector
	Planner    planner.Planner
	Registry   *tool.Registry
	// Primary is the validated, rollback-capable channel. Required.
	Primary channel.Channel
	// Secondary is the degradation target. Nil disables degradation.
	Secondary    channel.Channel
	Store        checkpoint.Store
	RejectPolicy config.RejectPolicy
	StepTimeout  time.Duration
	Logger       *slog.Logger
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Classifier == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "classifier is required")
	}
	if opts.Selector == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "strategy selector is required")
	}
	if opts.Planner == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "planner is required")
	}
	if opts.Registry == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "tool registry is required")
	}
	if opts.Primary == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "primary channel is required")
	}
	if opts.Store == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "checkpoint store is required")
	}
	if !opts.RejectPolicy.IsValid() {
		opts.RejectPolicy = config.RejectPolicyAbort
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		classifier:   opts.Classifier,
		selector:     opts.Selector,
		planner:      opts.Planner,
		registry:     opts.Registry,
		primary:      opts.Primary,
		secondary:    opts.Secondary,
		store:        opts.Store,
		rejectPolicy: opts.RejectPolicy,
		stepTimeout:  opts.StepTimeout,
		locks:        newThreadLocks(),
		logger:       opts.Logger,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// Route processes one request on the given thread: classify, select a
// strategy, plan, then execute steps until completion or the first gated
// action. A zero threadID starts a new thread.
func (o *Orchestrator) Route(ctx context.Context, query string, threadID types.ID) (*RouteResult, error) {
	if query == "" {
		return nil, types.NewError(types.THREAD_INVALID_INPUT, "query cannot be empty")
	}
	if threadID.IsZero() {
		threadID = types.NewID()
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.Route",
		trace.WithAttributes(attribute.String("thread.id", threadID.String())))
	defer span.End()

	if !o.locks.acquire(threadID) {
		return nil, types.NewError(types.THREAD_BUSY,
			fmt.Sprintf("thread %s has an operation in flight", threadID))
	}
	defer o.locks.release(threadID)

	st, err := o.freshState(ctx, threadID, query)
	if err != nil {
		return nil, err
	}

	in, err := o.classifier.Classify(ctx, query)
	if err != nil {
		return nil, o.fail(ctx, st, types.WrapError(types.CLASSIFY_BACKEND_FAILED, "classification failed", err))
	}
	rawIntent, _ := json.Marshal(in)
	st.Intent = rawIntent
	if err := o.transition(ctx, st, thread.StageClassified); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("intent.primary", string(in.Primary)))

	dec, err := o.selector.Select(ctx, query)
	if err != nil {
		return nil, o.fail(ctx, st, types.WrapError(types.STRATEGY_FALLBACK_FAILED, "strategy selection failed", err))
	}
	st.Strategy = dec.Strategy.String()
	span.SetAttributes(attribute.String("strategy", st.Strategy))
	o.logger.Info("request routed",
		"thread_id", st.ThreadID,
		"intent", in.Primary,
		"strategy", dec.Strategy,
		"confidence", dec.Confidence,
		"low_confidence", dec.LowConfidence)

	plan, err := o.planner.BuildPlan(ctx, query, in, dec.Strategy, o.registry.List())
	if err != nil {
		o.logger.Warn("planner failed, using fallback plan",
			"thread_id", st.ThreadID, "error", err)
		plan, err = planner.FallbackPlan(query, dec.Strategy, o.registry.List())
		if err != nil {
			return nil, o.fail(ctx, st, types.WrapError(types.PLAN_BUILD_FAILED, "planning failed", err))
		}
	}
	st.Plan = plan
	if err := o.transition(ctx, st, thread.StagePlanned); err != nil {
		return nil, err
	}

	if err := o.transition(ctx, st, thread.StageExecuting); err != nil {
		return nil, err
	}
	if err := o.runSteps(ctx, st); err != nil {
		return nil, err
	}

	return o.routeResult(st), nil
}

// freshState returns the state a new request on threadID should start from.
// Re-routing an interrupted or in-flight thread is rejected; a terminal
// thread is restarted in place, preserving its version chain.
func (o *Orchestrator) freshState(ctx context.Context, threadID types.ID, query string) (*thread.State, error) {
	existing, err := o.store.Get(ctx, threadID)
	if err != nil {
		if types.ErrorCodeOf(err) == types.CHECKPOINT_NOT_FOUND {
			st := thread.NewState(threadID, query)
			if err := o.persist(ctx, st); err != nil {
				return nil, err
			}
			return st, nil
		}
		return nil, err
	}
	if !existing.Stage.IsTerminal() {
		return nil, types.NewError(types.THREAD_BUSY,
			fmt.Sprintf("thread %s is %s; resume or abort it before routing a new request",
				threadID, existing.Stage))
	}
	st := thread.NewState(threadID, query)
	st.Version = existing.Version
	if err := o.persist(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (o *Orchestrator) routeResult(st *thread.State) *RouteResult {
	res := &RouteResult{
		ThreadID:      st.ThreadID.String(),
		WorkflowType:  st.Strategy,
		Stage:         st.Stage,
		Interrupted:   st.Stage == thread.StageInterrupted,
		NextNode:      nextNode(st),
		ExecutionPlan: buildExecutionPlan(st.Plan),
		FinalMessage:  st.FinalMessage,
	}
	if st.Plan != nil {
		res.Todos = st.Plan.Todos()
	}
	if st.Pending != nil {
		res.Pending = pendingSummary(st.Pending, pendingReason(st))
	}
	return res
}

// persist writes the state, treating any checkpoint failure as fatal for
// the thread. Forward progress without a durable record is never allowed.
func (o *Orchestrator) persist(ctx context.Context, st *thread.State) error {
	if err := o.store.Put(ctx, st); err != nil {
		o.logger.Error("checkpoint write failed",
			"thread_id", st.ThreadID, "stage", st.Stage, "error", err)
		return types.WrapError(types.CHECKPOINT_WRITE_FAILED,
			fmt.Sprintf("checkpoint write failed for thread %s", st.ThreadID), err)
	}
	return nil
}

// transition moves the state and persists the new stage.
func (o *Orchestrator) transition(ctx context.Context, st *thread.State, next thread.Stage) error {
	if err := st.Transition(next); err != nil {
		return types.NewError(types.THREAD_INVALID_INPUT, err.Error())
	}
	return o.persist(ctx, st)
}

// fail moves the thread to the failed stage best-effort and returns cause.
func (o *Orchestrator) fail(ctx context.Context, st *thread.State, cause error) error {
	st.FinalMessage = cause.Error()
	if err := st.Transition(thread.StageFailed); err == nil {
		if perr := o.persist(ctx, st); perr != nil {
			o.logger.Error("failed to persist failed stage",
				"thread_id", st.ThreadID, "error", perr)
		}
	}
	return cause
}
