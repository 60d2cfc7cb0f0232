package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_CodeBlock(t *testing.T) {
	response := "Here is the classification:\n```json\n{\"primary\": \"query\"}\n```\nDone."

	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"primary": "query"}`, got)
}

func TestExtractJSON_UntaggedCodeBlock(t *testing.T) {
	response := "```\n{\"strategy\": \"fast_path\", \"confidence\": 0.95}\n```"

	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy": "fast_path", "confidence": 0.95}`, got)
}

func TestExtractJSON_RawObject(t *testing.T) {
	response := `The plan is {"tasks": [{"description": "check BGP", "feasibility": "feasible"}]} as requested.`

	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Contains(t, got, `"tasks"`)
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	response := `{"outer": {"inner": "value with } in string"}}`

	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, response, got)
}

func TestExtractJSON_Array(t *testing.T) {
	response := `result: [1, 2, 3]`

	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", got)
}

func TestExtractJSON_SkipsNonJSONBlocks(t *testing.T) {
	response := "```python\nprint('hi')\n```\n```json\n{\"ok\": true}\n```"

	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, got)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("I could not produce a classification.")
	assert.Error(t, err)
}

func TestMockProvider_CyclesResponses(t *testing.T) {
	p := NewMockProvider("a", "b")

	r1, err := p.Complete(t.Context(), CompletionRequest{})
	require.NoError(t, err)
	r2, err := p.Complete(t.Context(), CompletionRequest{})
	require.NoError(t, err)
	r3, err := p.Complete(t.Context(), CompletionRequest{})
	require.NoError(t, err)

	assert.Equal(t, "a", r1.Content)
	assert.Equal(t, "b", r2.Content)
	assert.Equal(t, "a", r3.Content)
	assert.Len(t, p.Calls(), 3)
}
