// Package strategy selects an execution strategy for a classified request.
// An ordered list of rule matchers is evaluated first; only when no rule
// clears the confidence threshold is the LLM fallback consulted, and the
// fallback itself is bounded by a fixed timeout with a deterministic default.
package strategy

import (
	"encoding/json"
	"fmt"
)

// Strategy identifies how a request will be executed.
type Strategy string

const (
	// StrategyFastPath is a single-step execution with one tool call.
	StrategyFastPath Strategy = "fast_path"
	// StrategyDeepDive is a multi-step supervised plan with a mandatory
	// approval checkpoint after planning.
	StrategyDeepDive Strategy = "deep_dive"
	// StrategyInspection is a batch run driven by declarative inspection
	// profiles across many devices.
	StrategyInspection Strategy = "inspection"
)

// IsValid checks if the Strategy is a known value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFastPath, StrategyDeepDive, StrategyInspection:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Strategy.
func (s Strategy) String() string {
	return string(s)
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (s *Strategy) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := Strategy(str)
	if !v.IsValid() {
		return fmt.Errorf("invalid strategy: %s", str)
	}
	*s = v
	return nil
}

// Decision is the outcome of strategy selection.
type Decision struct {
	Strategy   Strategy `json:"strategy"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	// LowConfidence marks decisions produced by the rule-default path after
	// both rules and the LLM fallback failed to produce a confident answer.
	LowConfidence bool `json:"low_confidence,omitempty"`
}
