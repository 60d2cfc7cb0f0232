// Package llm provides a thin provider abstraction over chat-completion
// backends. The orchestration layers (intent classification, strategy
// fallback, planning) depend only on the Provider interface so they can be
// tested against a mock and wired to any configured backend.
package llm

import (
	"context"

	"github.com/netauto-ai/conduit/internal/types"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// CompletionRequest describes a single blocking completion call.
type CompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// CompletionResponse is the result of a completion call.
type CompletionResponse struct {
	Model   string `json:"model"`
	Content string `json:"content"`
}

// Provider is the interface all completion backends implement.
type Provider interface {
	// Name returns the provider name (e.g. "openai", "anthropic", "ollama")
	Name() string

	// Complete sends a completion request and blocks until the full
	// response is available or ctx expires.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Health checks provider connectivity
	Health(ctx context.Context) types.HealthStatus
}
