// Package thread defines the durable data model for a single operator
// conversation: the workflow stage machine, the execution plan, the
// pending-action resumption token, and the append-only invocation history.
// The checkpoint store persists these types; the orchestrator consumes them.
package thread

import (
	"encoding/json"
	"fmt"
)

// Stage is the lifecycle stage of a thread's workflow.
type Stage string

const (
	StageReceived    Stage = "received"
	StageClassified  Stage = "classified"
	StagePlanned     Stage = "planned"
	StageExecuting   Stage = "executing"
	StageInterrupted Stage = "interrupted"
	StageResuming    Stage = "resuming"
	StageCompleted   Stage = "completed"
	StageAborted     Stage = "aborted"
	StageFailed      Stage = "failed"
)

// String returns the string representation of the Stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid checks if the Stage is a known value.
func (s Stage) IsValid() bool {
	switch s {
	case StageReceived, StageClassified, StagePlanned, StageExecuting,
		StageInterrupted, StageResuming, StageCompleted, StageAborted, StageFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the stage admits no further transitions.
func (s Stage) IsTerminal() bool {
	switch s {
	case StageCompleted, StageAborted, StageFailed:
		return true
	default:
		return false
	}
}

// transitions is the allowed stage graph. Monotonic except for the
// resuming -> executing back-edge. Any stage may move to failed, and
// executing/interrupted may be aborted by the caller.
var transitions = map[Stage][]Stage{
	StageReceived:    {StageClassified, StageFailed, StageAborted},
	StageClassified:  {StagePlanned, StageFailed, StageAborted},
	StagePlanned:     {StageExecuting, StageFailed, StageAborted},
	StageExecuting:   {StageInterrupted, StageCompleted, StageFailed, StageAborted},
	StageInterrupted: {StageResuming, StageFailed, StageAborted},
	StageResuming:    {StageExecuting, StageInterrupted, StageCompleted, StageFailed, StageAborted},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Stage) CanTransition(next Stage) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	stage := Stage(str)
	if !stage.IsValid() {
		return fmt.Errorf("invalid stage: %s", str)
	}
	*s = stage
	return nil
}
