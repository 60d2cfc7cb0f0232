package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cliinternal "github.com/netauto-ai/conduit/cmd/conduit/internal"
	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/checkpoint"
	"github.com/netauto-ai/conduit/internal/config"
	"github.com/netauto-ai/conduit/internal/intent"
	"github.com/netauto-ai/conduit/internal/llm"
	"github.com/netauto-ai/conduit/internal/orchestrator"
	"github.com/netauto-ai/conduit/internal/planner"
	"github.com/netauto-ai/conduit/internal/strategy"
	"github.com/netauto-ai/conduit/internal/tool"
	"github.com/netauto-ai/conduit/internal/tool/builtin"
)

var (
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "conduit",
	Short: "Conduit - supervised network operations workflows",
	Long: `Conduit turns free-text network operations requests into supervised
workflows: it classifies the request, selects an execution strategy,
plans tool calls, and pauses for approval before anything that changes
device state. Interrupted workflows survive restarts and resume from
their durable checkpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose error output")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(abortCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	if p := os.Getenv("CONDUIT_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "conduit.yaml"
	}
	return home + "/.conduit/conduit.yaml"
}

// app bundles everything a command needs, built once per invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	orch   *orchestrator.Orchestrator
	store  checkpoint.Store
	out    *cliinternal.Formatter
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// buildApp loads configuration and wires the orchestrator.
func buildApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	var inventory *builtin.Inventory
	if cfg.Inventory.BaseURL != "" {
		inventory = builtin.NewInventory(builtin.InventoryConfig{
			BaseURL: cfg.Inventory.BaseURL,
			Token:   cfg.Inventory.Token,
			Timeout: cfg.Inventory.Timeout,
		})
	}
	if err := builtin.Register(registry, inventory); err != nil {
		return nil, err
	}

	var plannerImpl planner.Planner = planner.NewLLMPlanner(provider, logger)
	if cfg.Inspection.ProfilesPath != "" {
		profiles, err := planner.LoadInspectionProfiles(cfg.Inspection.ProfilesPath)
		if err != nil {
			return nil, err
		}
		plannerImpl = planner.NewInspectionAware(plannerImpl, profiles)
	}

	var secondary channel.Channel
	if cfg.Channels.Secondary.Gateway != "" {
		runner := channel.NewGatewayRunner(cfg.Channels.Secondary.Gateway, cfg.Channels.Secondary.Timeout)
		secondary = channel.NewSecondary(runner)
	}

	store, err := checkpoint.OpenSQLite(cfg.Checkpoint.Path)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Classifier:   intent.NewLLMClassifier(provider, cfg.Classifier.Timeout, logger),
		Selector:     strategy.NewSelector(nil, cfg.Strategy.Threshold, provider, cfg.Strategy.FallbackTimeout, logger),
		Planner:      plannerImpl,
		Registry:     registry,
		Primary:      channel.NewPrimary(cfg.Channels.Primary),
		Secondary:    secondary,
		Store:        store,
		RejectPolicy: cfg.Orchestrator.RejectPolicy,
		StepTimeout:  cfg.Orchestrator.StepTimeout,
		Logger:       logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		orch:   orch,
		store:  store,
		out:    cliinternal.NewFormatter(cmd.OutOrStdout(), jsonOutput),
	}, nil
}
