package thread

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/netauto-ai/conduit/internal/types"
)

// DecisionKind is a human decision on a pending action.
type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionEdit    DecisionKind = "edit"
	DecisionReject  DecisionKind = "reject"
)

// IsValid checks if the DecisionKind is a known value.
func (d DecisionKind) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionEdit, DecisionReject:
		return true
	default:
		return false
	}
}

// Decision is the approver's verdict on a pending action.
type Decision struct {
	Kind            DecisionKind   `json:"kind"`
	EditedArguments map[string]any `json:"edited_arguments,omitempty"`
	Reason          string         `json:"reason,omitempty"`
}

// PendingAction is the resumption token for an interrupted thread. It exists
// if and only if the thread stage is interrupted; at most one per thread.
type PendingAction struct {
	ToolName         string         `json:"tool_name"`
	Arguments        map[string]any `json:"arguments"`
	AllowedDecisions []DecisionKind `json:"allowed_decisions"`
	TaskIndex        int            `json:"task_index"`
	// Channel names which execution channel the approved call will use.
	Channel string `json:"channel"`
	// RollbackWarning is set when the call would run on a channel with no
	// atomic rollback guarantee. It must be surfaced to the approver.
	RollbackWarning string    `json:"rollback_warning,omitempty"`
	RequestedAt     time.Time `json:"requested_at"`
}

// Allows reports whether the given decision kind is permitted for this action.
func (p *PendingAction) Allows(kind DecisionKind) bool {
	for _, d := range p.AllowedDecisions {
		if d == kind {
			return true
		}
	}
	return false
}

// InvocationRecord is one entry of the append-only audit trail.
type InvocationRecord struct {
	ToolName      string         `json:"tool_name"`
	Arguments     map[string]any `json:"arguments"`
	ChannelUsed   string         `json:"channel_used"`
	ResultSummary string         `json:"result_summary"`
	Failed        bool           `json:"failed,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// State is the full recoverable state of a thread. The checkpoint store owns
// it exclusively; the orchestrator never keeps a copy beyond one request
// scope. Persisted State plus static configuration is sufficient to resume
// after a process restart.
type State struct {
	ThreadID types.ID `json:"thread_id"`
	Stage    Stage    `json:"stage"`
	// Version is incremented on every successful write; a stale writer
	// fails instead of overwriting newer state.
	Version int64 `json:"version"`

	Query      string          `json:"query"`
	Intent     json.RawMessage `json:"intent,omitempty"`
	Strategy   string          `json:"strategy,omitempty"`
	Plan       *Plan           `json:"plan,omitempty"`
	StepCursor int             `json:"step_cursor"`

	History []InvocationRecord `json:"history,omitempty"`
	Pending *PendingAction     `json:"pending_action,omitempty"`

	FinalMessage string    `json:"final_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewState creates a fresh thread state in the received stage.
func NewState(threadID types.ID, query string) *State {
	now := time.Now().UTC()
	return &State{
		ThreadID:  threadID,
		Stage:     StageReceived,
		Query:     query,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the state to next, enforcing the stage graph and the
// pending-action invariant.
func (s *State) Transition(next Stage) error {
	if !s.Stage.CanTransition(next) {
		return fmt.Errorf("invalid stage transition %s -> %s", s.Stage, next)
	}
	if next != StageInterrupted && s.Pending != nil {
		s.Pending = nil
	}
	s.Stage = next
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Interrupt moves the state to interrupted with the given pending action.
func (s *State) Interrupt(pending *PendingAction) error {
	if pending == nil {
		return fmt.Errorf("interrupt requires a pending action")
	}
	if !s.Stage.CanTransition(StageInterrupted) {
		return fmt.Errorf("invalid stage transition %s -> %s", s.Stage, StageInterrupted)
	}
	s.Stage = StageInterrupted
	s.Pending = pending
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Record appends an invocation record to the audit history.
func (s *State) Record(rec InvocationRecord) {
	s.History = append(s.History, rec)
	s.UpdatedAt = time.Now().UTC()
}

// Validate checks the state invariants that must hold at every checkpoint.
func (s *State) Validate() error {
	if err := s.ThreadID.Validate(); err != nil {
		return fmt.Errorf("invalid thread ID: %w", err)
	}
	if !s.Stage.IsValid() {
		return fmt.Errorf("invalid stage %q", s.Stage)
	}
	if (s.Stage == StageInterrupted) != (s.Pending != nil) {
		return fmt.Errorf("pending action invariant violated: stage=%s pending=%v",
			s.Stage, s.Pending != nil)
	}
	if s.Plan != nil && (s.StepCursor < 0 || s.StepCursor > len(s.Plan.Tasks)) {
		return fmt.Errorf("step cursor %d out of range", s.StepCursor)
	}
	return nil
}
