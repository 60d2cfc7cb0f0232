package strategy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto-ai/conduit/internal/llm"
)

func TestSelector_RuleMatch(t *testing.T) {
	tests := []struct {
		query string
		want  Strategy
	}{
		{"show bgp summary", StrategyFastPath},
		{"list BGP sessions", StrategyFastPath},
		{"why is the uplink flapping", StrategyDeepDive},
		{"delete interface Gi0/1 on R1", StrategyDeepDive},
		{"run compliance inspection on all devices", StrategyInspection},
	}

	// No provider: any fallback would be the rule default, so a correct
	// strategy proves the rule matched.
	s := NewSelector(nil, 0, nil, 0, nil)

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Select(t.Context(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Strategy)
			assert.GreaterOrEqual(t, got.Confidence, 0.9)
			assert.False(t, got.LowConfidence)
		})
	}
}

func TestSelector_DeclarationOrderBreaksTies(t *testing.T) {
	rules := []Rule{
		{Name: "first", Keywords: []string{"ambiguous"}, Strategy: StrategyDeepDive, Confidence: 0.9},
		{Name: "second", Keywords: []string{"ambiguous"}, Strategy: StrategyInspection, Confidence: 0.9},
	}
	s := NewSelector(rules, 0, nil, 0, nil)

	got, err := s.Select(t.Context(), "something ambiguous")
	require.NoError(t, err)
	assert.Equal(t, StrategyDeepDive, got.Strategy)
	assert.Contains(t, got.Reasoning, "first")
}

func TestSelector_LLMFallback(t *testing.T) {
	provider := llm.NewMockProvider(
		`{"strategy": "deep_dive", "confidence": 0.85, "reasoning": "needs investigation"}`)
	s := NewSelector(nil, 0, provider, time.Second, nil)

	got, err := s.Select(t.Context(), "the east datacenter feels wrong somehow")
	require.NoError(t, err)
	assert.Equal(t, StrategyDeepDive, got.Strategy)
	assert.Contains(t, got.Reasoning, "llm fallback")
	assert.False(t, got.LowConfidence)
}

func TestSelector_FallbackLowConfidenceDefaults(t *testing.T) {
	provider := llm.NewMockProvider(
		`{"strategy": "inspection", "confidence": 0.2, "reasoning": "guessing"}`)
	s := NewSelector(nil, 0, provider, time.Second, nil)

	got, err := s.Select(t.Context(), "do something clever")
	require.NoError(t, err)
	assert.Equal(t, StrategyFastPath, got.Strategy)
	assert.True(t, got.LowConfidence)
	assert.Contains(t, got.Reasoning, "low confidence")
}

func TestSelector_FallbackErrorDefaults(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.Err = fmt.Errorf("backend unavailable")
	s := NewSelector(nil, 0, provider, time.Second, nil)

	got, err := s.Select(t.Context(), "do something clever")
	require.NoError(t, err)
	assert.Equal(t, StrategyFastPath, got.Strategy)
	assert.True(t, got.LowConfidence)
}

func TestSelector_FallbackTimeoutBounded(t *testing.T) {
	provider := llm.NewMockProvider(`{"strategy": "deep_dive", "confidence": 0.9}`)
	provider.Delay = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	s := NewSelector(nil, 0, provider, 20*time.Millisecond, nil)

	start := time.Now()
	got, err := s.Select(t.Context(), "do something clever")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StrategyFastPath, got.Strategy)
	assert.True(t, got.LowConfidence)
}
