package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/netauto-ai/conduit/internal/types"
)

// ProviderConfig configures a completion backend.
type ProviderConfig struct {
	// Provider selects the backend: "openai", "anthropic", or "ollama".
	Provider string `yaml:"provider"`
	// Model is the default model identifier.
	Model string `yaml:"model"`
	// APIKey overrides the provider environment variable when set.
	APIKey string `yaml:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint (openai-compatible gateways,
	// local ollama instances).
	BaseURL string `yaml:"base_url,omitempty"`
}

// LangchainProvider adapts a langchaingo chat model to the Provider interface.
type LangchainProvider struct {
	name  string
	model string
	llm   llms.Model
}

// NewProvider constructs a LangchainProvider from config.
func NewProvider(cfg ProviderConfig) (*LangchainProvider, error) {
	var (
		model llms.Model
		err   error
	)

	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if key := apiKey(cfg, "OPENAI_API_KEY"); key != "" {
			opts = append(opts, openai.WithToken(key))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model)}
		if key := apiKey(cfg, "ANTHROPIC_API_KEY"); key != "" {
			opts = append(opts, anthropic.WithToken(key))
		}
		model, err = anthropic.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Provider, err)
	}

	return &LangchainProvider{name: cfg.Provider, model: cfg.Model, llm: model}, nil
}

func apiKey(cfg ProviderConfig, envVar string) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	return os.Getenv(envVar)
}

// Name returns the backend name.
func (p *LangchainProvider) Name() string {
	return p.name
}

// Complete sends a blocking completion request through langchaingo.
func (p *LangchainProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, llms.MessageContent{
			Role:  toChatMessageType(m.Role),
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}

	var callOpts []llms.CallOption
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(req.Temperature))
	}

	resp, err := p.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", p.name)
	}

	return &CompletionResponse{
		Model:   p.model,
		Content: resp.Choices[0].Content,
	}, nil
}

// Health probes the backend with a one-token completion.
func (p *LangchainProvider) Health(ctx context.Context) types.HealthStatus {
	_, err := p.Complete(ctx, CompletionRequest{
		Messages:  []Message{NewUserMessage("ping")},
		MaxTokens: 1,
	})
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}

func toChatMessageType(r Role) llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
