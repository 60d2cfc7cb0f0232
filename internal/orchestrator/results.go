package orchestrator

import (
	"fmt"

	"github.com/netauto-ai/conduit/internal/thread"
)

// ExecutionPlan summarizes plan feasibility for the caller.
type ExecutionPlan struct {
	FeasibleTasks   []string `json:"feasible_tasks"`
	UncertainTasks  []string `json:"uncertain_tasks"`
	InfeasibleTasks []string `json:"infeasible_tasks"`
}

// PendingSummary describes the action awaiting approval, including the
// rollback-guarantee warning when the call would run on the secondary
// channel.
type PendingSummary struct {
	ToolName         string                `json:"tool_name"`
	Arguments        map[string]any        `json:"arguments"`
	AllowedDecisions []thread.DecisionKind `json:"allowed_decisions"`
	Channel          string                `json:"channel"`
	RollbackWarning  string                `json:"rollback_warning,omitempty"`
	Reason           string                `json:"reason,omitempty"`
}

// RouteResult is the outcome of routing one request.
type RouteResult struct {
	ThreadID      string          `json:"thread_id"`
	WorkflowType  string          `json:"workflow_type"`
	Stage         thread.Stage    `json:"stage"`
	Interrupted   bool            `json:"interrupted"`
	NextNode      string          `json:"next_node"`
	ExecutionPlan ExecutionPlan   `json:"execution_plan"`
	Todos         []string        `json:"todos,omitempty"`
	Pending       *PendingSummary `json:"pending,omitempty"`
	FinalMessage  string          `json:"final_message,omitempty"`
}

// ResumeResult is the outcome of resuming an interrupted thread.
type ResumeResult struct {
	ThreadID     string          `json:"thread_id"`
	Stage        thread.Stage    `json:"stage"`
	Interrupted  bool            `json:"interrupted"`
	Aborted      bool            `json:"aborted"`
	Pending      *PendingSummary `json:"pending,omitempty"`
	FinalMessage string          `json:"final_message,omitempty"`
}

// buildExecutionPlan groups task descriptions by feasibility.
func buildExecutionPlan(p *thread.Plan) ExecutionPlan {
	var out ExecutionPlan
	if p == nil {
		return out
	}
	for _, t := range p.Tasks {
		switch t.Feasibility {
		case thread.FeasibilityFeasible:
			out.FeasibleTasks = append(out.FeasibleTasks, t.Description)
		case thread.FeasibilityUncertain:
			out.UncertainTasks = append(out.UncertainTasks, t.Description)
		case thread.FeasibilityInfeasible:
			out.InfeasibleTasks = append(out.InfeasibleTasks, t.Description)
		}
	}
	return out
}

// pendingSummary converts the persisted pending action for display.
func pendingSummary(p *thread.PendingAction, reason string) *PendingSummary {
	if p == nil {
		return nil
	}
	return &PendingSummary{
		ToolName:         p.ToolName,
		Arguments:        p.Arguments,
		AllowedDecisions: p.AllowedDecisions,
		Channel:          p.Channel,
		RollbackWarning:  p.RollbackWarning,
		Reason:           reason,
	}
}

// nextNode names the caller-visible continuation point.
func nextNode(st *thread.State) string {
	switch {
	case st.Stage == thread.StageInterrupted && st.Pending != nil:
		return fmt.Sprintf("approval:%s", st.Pending.ToolName)
	case st.Stage.IsTerminal():
		return string(st.Stage)
	default:
		return "execute"
	}
}
