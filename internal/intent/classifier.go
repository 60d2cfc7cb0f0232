package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/netauto-ai/conduit/internal/llm"
)

const classifySystemPrompt = `You classify network operations requests.
Categories:
  query    - read-only information retrieval (show, list, get)
  diagnose - analysis of an existing problem (why, troubleshoot, investigate)
  config   - any change to device or system state (set, delete, apply, fix)

Respond with JSON only:
{"primary": "...", "secondary": "...", "confidence": 0.0, "reasoning": "..."}

secondary is optional and used for compound requests such as
"diagnose the issue, then fix it" (primary=diagnose, secondary=config).`

// Classifier maps free text to an Intent.
type Classifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}

// LLMClassifier classifies through a completion backend with a fixed timeout,
// falling back to the keyword heuristic on any backend or parse failure.
type LLMClassifier struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewLLMClassifier creates a classifier backed by the given provider.
func NewLLMClassifier(provider llm.Provider, timeout time.Duration, logger *slog.Logger) *LLMClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClassifier{provider: provider, timeout: timeout, logger: logger}
}

// Classify returns the intent for text. It never returns an error: backend
// failures degrade to the keyword heuristic, which itself cannot fail.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(classifySystemPrompt),
			llm.NewUserMessage(text),
		},
		Temperature: 0.1,
	})
	if err != nil {
		c.logger.Warn("intent classification backend failed, using keyword fallback",
			"error", err)
		return ClassifyKeywords(text), nil
	}

	parsed, err := parseIntentResponse(resp.Content)
	if err != nil {
		c.logger.Warn("intent classification response unparseable, using keyword fallback",
			"error", err)
		return ClassifyKeywords(text), nil
	}

	parsed.normalize()
	return parsed, nil
}

func parseIntentResponse(content string) (Intent, error) {
	raw, err := llm.ExtractJSON(content)
	if err != nil {
		return Intent{}, err
	}
	var out Intent
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Intent{}, err
	}
	if !out.Primary.IsValid() {
		return Intent{}, errInvalidPrimary
	}
	return out, nil
}

var errInvalidPrimary = jsonError("classification missing valid primary category")

type jsonError string

func (e jsonError) Error() string { return string(e) }
