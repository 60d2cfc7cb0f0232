// Package intent maps free-text operator requests to an intent category and
// a human-in-the-loop requirement flag. Classification prefers the LLM
// backend but always recovers through a deterministic keyword heuristic, so
// it never fails a request.
package intent

import (
	"encoding/json"
	"fmt"
)

// Category is a coarse intent category for an operator request.
type Category string

const (
	// CategoryQuery is a read-only request.
	CategoryQuery Category = "query"
	// CategoryDiagnose is an analysis request.
	CategoryDiagnose Category = "diagnose"
	// CategoryConfig is a state-mutating request.
	CategoryConfig Category = "config"
)

// IsValid checks if the Category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryQuery, CategoryDiagnose, CategoryConfig:
		return true
	default:
		return false
	}
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*c = ""
		return nil
	}
	cat := Category(s)
	if !cat.IsValid() {
		return fmt.Errorf("invalid intent category: %s", s)
	}
	*c = cat
	return nil
}

// Intent is the classified interpretation of a request. Compound requests
// ("diagnose, then fix") populate both Primary and Secondary.
type Intent struct {
	Primary      Category `json:"primary"`
	Secondary    Category `json:"secondary,omitempty"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning,omitempty"`
	RequiresHITL bool     `json:"requires_hitl"`
}

// normalize clamps confidence and enforces the HITL rule: any config
// primary or secondary intent requires approval, regardless of confidence.
func (i *Intent) normalize() {
	if i.Confidence < 0 {
		i.Confidence = 0
	}
	if i.Confidence > 1 {
		i.Confidence = 1
	}
	if i.Primary == CategoryConfig || i.Secondary == CategoryConfig {
		i.RequiresHITL = true
	}
}
