package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "circuitry",
		Short: "Circuitry - Visual Workflow Engine",
		Long: `Circuitry validates and executes workflow circuits: directed graphs of
typed nodes connected by data-flow edges.

Features:
  - Structural and type-level circuit validation
  - Concurrent dependency-driven execution
  - Conditional branch pruning (fork/join without cycles)
  - Durable, checkpointed multi-step nodes
  - Failure isolation to dependent subgraphs`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newDevCommand())

	return rootCmd
}
