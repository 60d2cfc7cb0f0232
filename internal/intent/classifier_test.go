package intent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netauto-ai/conduit/internal/llm"
)

func TestLLMClassifier_ParsesResponse(t *testing.T) {
	provider := llm.NewMockProvider(
		"```json\n{\"primary\": \"query\", \"confidence\": 0.95, \"reasoning\": \"read-only show command\"}\n```")
	c := NewLLMClassifier(provider, time.Second, nil)

	got, err := c.Classify(t.Context(), "list BGP sessions")
	require.NoError(t, err)
	assert.Equal(t, CategoryQuery, got.Primary)
	assert.False(t, got.RequiresHITL)
	assert.InDelta(t, 0.95, got.Confidence, 0.001)
}

func TestLLMClassifier_ConfigForcesHITL(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "primary config",
			response: `{"primary": "config", "confidence": 0.9, "reasoning": "mutating"}`,
		},
		{
			name:     "secondary config",
			response: `{"primary": "diagnose", "secondary": "config", "confidence": 0.2, "reasoning": "compound"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLLMClassifier(llm.NewMockProvider(tt.response), time.Second, nil)
			got, err := c.Classify(t.Context(), "diagnose then fix the interface")
			require.NoError(t, err)
			// HITL is forced regardless of confidence.
			assert.True(t, got.RequiresHITL)
		})
	}
}

func TestLLMClassifier_BackendFailureFallsBack(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.Err = fmt.Errorf("connection refused")
	c := NewLLMClassifier(provider, time.Second, nil)

	got, err := c.Classify(t.Context(), "delete interface Gi0/1 on R1")
	require.NoError(t, err, "classification failure must never fail the request")
	assert.Equal(t, CategoryConfig, got.Primary)
	assert.True(t, got.RequiresHITL)
}

func TestLLMClassifier_GarbageResponseFallsBack(t *testing.T) {
	c := NewLLMClassifier(llm.NewMockProvider("I can't classify this."), time.Second, nil)

	got, err := c.Classify(t.Context(), "show version")
	require.NoError(t, err)
	assert.Equal(t, CategoryQuery, got.Primary)
}

func TestLLMClassifier_Timeout(t *testing.T) {
	provider := llm.NewMockProvider(`{"primary": "query", "confidence": 0.9}`)
	provider.Delay = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	c := NewLLMClassifier(provider, 10*time.Millisecond, nil)

	start := time.Now()
	got, err := c.Classify(t.Context(), "show interfaces")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "classifier must not block past its timeout")
	assert.Equal(t, CategoryQuery, got.Primary)
}

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		text          string
		wantPrimary   Category
		wantSecondary Category
		wantHITL      bool
	}{
		{"show ip interface brief", CategoryQuery, "", false},
		{"why is OSPF adjacency down", CategoryDiagnose, "", false},
		{"delete interface Gi0/1 on R1", CategoryConfig, "", true},
		{"troubleshoot the link and fix it", CategoryDiagnose, CategoryConfig, true},
		{"hello there", CategoryQuery, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ClassifyKeywords(tt.text)
			assert.Equal(t, tt.wantPrimary, got.Primary)
			assert.Equal(t, tt.wantSecondary, got.Secondary)
			assert.Equal(t, tt.wantHITL, got.RequiresHITL)
			assert.GreaterOrEqual(t, got.Confidence, 0.5)
		})
	}
}

func TestClassifyKeywords_DefaultConfidence(t *testing.T) {
	got := ClassifyKeywords("xyzzy")
	assert.Equal(t, CategoryQuery, got.Primary)
	assert.InDelta(t, 0.5, got.Confidence, 0.001)
}
