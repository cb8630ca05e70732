// Package main implements the cortexd CLI: run multi-surface design
// workflows with human approval gates from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/fyrsmithlabs/cortexd/internal/logging"
	"github.com/fyrsmithlabs/cortexd/internal/surface"
	"github.com/spf13/cobra"
)

var (
	// configPath overrides the default config file location.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cortexd",
	Short: "Orchestrate design workflows across Figma, GitHub, Notion, Slack and analytics",
	Long: `cortexd drives multi-surface design workflows through a reasoning
state machine. Every risky step pauses for human approval, failures are
classified and retried where safe, and all activity streams to the
terminal.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/cortexd/config.yaml)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(workflowsCmd)
	rootCmd.AddCommand(surfacesCmd)
}

// stack is everything a command needs wired together.
type stack struct {
	cfg         *config.Config
	logger      *logging.Logger
	machine     *cortex.Machine
	coordinator *surface.Coordinator
}

// buildStack loads config, builds the logger and machine, and registers
// every surface adapter. Unconfigured adapters register too; they only
// block workflows that need them.
func buildStack() (*stack, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}

	logCfg, err := logging.FromMainConfig(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	machine := cortex.New(
		cortex.WithLogger(logger),
		cortex.WithMaxRetries(cfg.Healing.MaxRetries),
		cortex.WithApprovalTimeout(cfg.Approval.Timeout.Duration()),
	)

	coordinator := surface.NewCoordinator(machine, surface.WithLogger(logger))
	coordinator.RegisterAdapter(surface.NewFigmaAdapter(cfg.Surfaces.Figma, nil))
	coordinator.RegisterAdapter(surface.NewGitHubAdapter(cfg.Surfaces.GitHub, nil))
	coordinator.RegisterAdapter(surface.NewNotionAdapter(cfg.Surfaces.Notion, nil))
	coordinator.RegisterAdapter(surface.NewSlackAdapter(cfg.Surfaces.Slack, nil))
	coordinator.RegisterAdapter(surface.NewAnalyticsAdapter(cfg.Surfaces.Analytics, nil))

	return &stack{
		cfg:         cfg,
		logger:      logger,
		machine:     machine,
		coordinator: coordinator,
	}, nil
}
