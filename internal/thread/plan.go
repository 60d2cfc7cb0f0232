package thread

import (
	"encoding/json"
	"fmt"
)

// Feasibility classifies whether a planned task can be carried out with the
// registered tools.
type Feasibility string

const (
	FeasibilityFeasible   Feasibility = "feasible"
	FeasibilityUncertain  Feasibility = "uncertain"
	FeasibilityInfeasible Feasibility = "infeasible"
)

// IsValid checks if the Feasibility is a known value.
func (f Feasibility) IsValid() bool {
	switch f {
	case FeasibilityFeasible, FeasibilityUncertain, FeasibilityInfeasible:
		return true
	default:
		return false
	}
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (f *Feasibility) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := Feasibility(str)
	if !v.IsValid() {
		return fmt.Errorf("invalid feasibility: %s", str)
	}
	*f = v
	return nil
}

// Task is one step of an execution plan.
type Task struct {
	Description string         `json:"description"`
	Feasibility Feasibility    `json:"feasibility"`
	ToolName    string         `json:"tool_name,omitempty"`
	Arguments   map[string]any `json:"arguments,omitempty"`
	Done        bool           `json:"done"`
}

// Plan is the ordered task list for a thread. It is built once when the
// thread reaches the planned stage and is immutable afterward except for
// step completion marking.
type Plan struct {
	Strategy string `json:"strategy"`
	Tasks    []Task `json:"tasks"`
}

// Counts returns the number of feasible, uncertain, and infeasible tasks.
func (p *Plan) Counts() (feasible, uncertain, infeasible int) {
	for _, t := range p.Tasks {
		switch t.Feasibility {
		case FeasibilityFeasible:
			feasible++
		case FeasibilityUncertain:
			uncertain++
		case FeasibilityInfeasible:
			infeasible++
		}
	}
	return feasible, uncertain, infeasible
}

// Todos lists descriptions of tasks not yet done, in plan order.
func (p *Plan) Todos() []string {
	var todos []string
	for _, t := range p.Tasks {
		if !t.Done {
			todos = append(todos, t.Description)
		}
	}
	return todos
}

// Validate checks structural plan invariants.
func (p *Plan) Validate() error {
	if len(p.Tasks) == 0 {
		return fmt.Errorf("plan has no tasks")
	}
	for i, t := range p.Tasks {
		if t.Description == "" {
			return fmt.Errorf("task %d has no description", i)
		}
		if !t.Feasibility.IsValid() {
			return fmt.Errorf("task %d has invalid feasibility %q", i, t.Feasibility)
		}
	}
	return nil
}
