package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netauto-ai/conduit/internal/types"
)

// Load reads the config file at path, layered over defaults, and validates
// the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "read config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "invalid config", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger from LoggingConfig.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
