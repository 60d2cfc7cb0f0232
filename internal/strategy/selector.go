package strategy

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/netauto-ai/conduit/internal/llm"
)

const selectSystemPrompt = `You select an execution strategy for a network
operations request. Strategies:
  fast_path  - one read-only tool call answers the request
  deep_dive  - multi-step investigation or change, needs supervision
  inspection - batch declarative checks across many devices

Respond with JSON only:
{"strategy": "...", "confidence": 0.0, "reasoning": "..."}`

// DefaultThreshold is the rule confidence a matcher must exceed to win
// without consulting the LLM fallback.
const DefaultThreshold = 0.8

// fallbackFloor is the minimum LLM confidence accepted before the
// rule-default applies.
const fallbackFloor = 0.5

// Selector picks a strategy via ordered rules with an LLM fallback.
type Selector struct {
	rules     []Rule
	threshold float64
	provider  llm.Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSelector creates a Selector. provider may be nil, in which case the
// rule-default applies whenever no rule clears the threshold.
func NewSelector(rules []Rule, threshold float64, provider llm.Provider, timeout time.Duration, logger *slog.Logger) *Selector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		rules:     rules,
		threshold: threshold,
		provider:  provider,
		timeout:   timeout,
		logger:    logger,
	}
}

// Select returns the strategy decision for query. It never blocks past the
// fallback timeout and never returns an error.
func (s *Selector) Select(ctx context.Context, query string) (Decision, error) {
	// First matching rule above threshold wins; declaration order breaks ties.
	for _, rule := range s.rules {
		if rule.Confidence > s.threshold && rule.Matches(query) {
			return Decision{
				Strategy:   rule.Strategy,
				Confidence: rule.Confidence,
				Reasoning:  "rule " + rule.Name + ": " + rule.Reasoning,
			}, nil
		}
	}

	if s.provider != nil {
		if d, ok := s.selectLLM(ctx, query); ok {
			return d, nil
		}
	}

	return Decision{
		Strategy:      StrategyFastPath,
		Confidence:    0.5,
		Reasoning:     "low confidence: no rule matched and fallback was unavailable or uncertain, defaulting to fast_path",
		LowConfidence: true,
	}, nil
}

func (s *Selector) selectLLM(ctx context.Context, query string) (Decision, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(selectSystemPrompt),
			llm.NewUserMessage(query),
		},
		Temperature: 0.1,
	})
	if err != nil {
		s.logger.Warn("strategy fallback call failed, applying rule default", "error", err)
		return Decision{}, false
	}

	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		s.logger.Warn("strategy fallback response unparseable", "error", err)
		return Decision{}, false
	}

	var d Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil || !d.Strategy.IsValid() {
		s.logger.Warn("strategy fallback produced invalid decision", "error", err)
		return Decision{}, false
	}
	if d.Confidence < fallbackFloor {
		s.logger.Debug("strategy fallback below confidence floor",
			"strategy", d.Strategy, "confidence", d.Confidence)
		return Decision{}, false
	}

	d.Reasoning = "llm fallback: " + d.Reasoning
	return d, true
}
