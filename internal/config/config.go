// Package config holds the static configuration for the conduit daemon and
// CLI. Together with the checkpoint store it is everything needed to resume
// a thread after a process restart.
package config

import (
	"fmt"
	"time"

	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/llm"
)

// RejectPolicy resolves the workflow-level behavior of a reject decision.
type RejectPolicy string

const (
	// RejectPolicyAbort aborts the whole thread on reject.
	RejectPolicyAbort RejectPolicy = "abort"
	// RejectPolicySkip skips the rejected step and continues the plan.
	RejectPolicySkip RejectPolicy = "skip"
)

// IsValid checks if the RejectPolicy is a known value.
func (p RejectPolicy) IsValid() bool {
	return p == RejectPolicyAbort || p == RejectPolicySkip
}

// Config is the root configuration.
type Config struct {
	Core         CoreConfig         `yaml:"core"`
	Logging      LoggingConfig      `yaml:"logging"`
	LLM          llm.ProviderConfig `yaml:"llm"`
	Classifier   ClassifierConfig   `yaml:"classifier"`
	Strategy     StrategyConfig     `yaml:"strategy"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Checkpoint   CheckpointConfig   `yaml:"checkpoint"`
	Channels     ChannelsConfig     `yaml:"channels"`
	Inspection   InspectionConfig   `yaml:"inspection"`
	Inventory    InventoryConfig    `yaml:"inventory"`
}

// CoreConfig contains daemon-wide settings.
type CoreConfig struct {
	DataDir string `yaml:"data_dir"`
	Debug   bool   `yaml:"debug"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// ClassifierConfig bounds the intent classification backend.
type ClassifierConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// StrategyConfig tunes strategy selection.
type StrategyConfig struct {
	// Threshold is the rule confidence required to skip the LLM fallback.
	Threshold float64 `yaml:"threshold"`
	// FallbackTimeout bounds the LLM fallback call.
	FallbackTimeout time.Duration `yaml:"fallback_timeout"`
}

// OrchestratorConfig tunes the state machine.
type OrchestratorConfig struct {
	// RejectPolicy is the workflow default for reject decisions; tools may
	// override it per registration.
	RejectPolicy RejectPolicy `yaml:"reject_policy"`
	// ThreadTTL is how long an idle thread survives before purge.
	ThreadTTL time.Duration `yaml:"thread_ttl"`
	// StepTimeout bounds each tool dispatch.
	StepTimeout time.Duration `yaml:"step_timeout"`
}

// CheckpointConfig locates the checkpoint store.
type CheckpointConfig struct {
	Path string `yaml:"path"`
}

// ChannelsConfig configures the execution backends.
type ChannelsConfig struct {
	Primary   channel.PrimaryConfig `yaml:"primary"`
	Secondary SecondaryConfig       `yaml:"secondary"`
}

// SecondaryConfig configures the command-session backend.
type SecondaryConfig struct {
	// Gateway is the terminal gateway endpoint the command runner dials.
	Gateway string `yaml:"gateway,omitempty"`
	// Timeout is the per-command default.
	Timeout time.Duration `yaml:"timeout"`
}

// InspectionConfig locates the declarative inspection profiles.
type InspectionConfig struct {
	ProfilesPath string `yaml:"profiles_path"`
}

// InventoryConfig points at the device inventory API. An empty base URL
// disables the inventory tool.
type InventoryConfig struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Core:    CoreConfig{DataDir: "~/.conduit"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		LLM:     llm.ProviderConfig{Provider: "openai", Model: "gpt-4o-mini"},
		Classifier: ClassifierConfig{
			Timeout: 10 * time.Second,
		},
		Strategy: StrategyConfig{
			Threshold:       0.8,
			FallbackTimeout: 10 * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			RejectPolicy: RejectPolicyAbort,
			ThreadTTL:    72 * time.Hour,
			StepTimeout:  60 * time.Second,
		},
		Checkpoint: CheckpointConfig{Path: "conduit.db"},
		Channels: ChannelsConfig{
			Primary:   channel.PrimaryConfig{Timeout: 30 * time.Second},
			Secondary: SecondaryConfig{Timeout: 30 * time.Second},
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if !c.Orchestrator.RejectPolicy.IsValid() {
		return fmt.Errorf("orchestrator.reject_policy must be %q or %q, got %q",
			RejectPolicyAbort, RejectPolicySkip, c.Orchestrator.RejectPolicy)
	}
	if c.Orchestrator.ThreadTTL <= 0 {
		return fmt.Errorf("orchestrator.thread_ttl must be positive")
	}
	if c.Strategy.Threshold <= 0 || c.Strategy.Threshold >= 1 {
		return fmt.Errorf("strategy.threshold must be in (0, 1)")
	}
	if c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
