package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/config"
	"github.com/circuitry/circuitry/pkg/engine"
	"github.com/circuitry/circuitry/pkg/ledger"
	"github.com/circuitry/circuitry/pkg/nodes"
)

func newRunCommand() *cobra.Command {
	var (
		inputsJSON string
		runID      string
	)

	cmd := &cobra.Command{
		Use:   "run <circuit.json>",
		Short: "Execute a circuit",
		Long: `Validate and execute a circuit JSON file with the built-in node catalog.

Initial inputs are supplied as a JSON object keyed by node id, then by input
port name. Passing --run-id resumes an interrupted run: multi-step nodes
replay steps already recorded in the ledger instead of re-executing them.`,
		Example: `  # Run a circuit
  circuitry run ./flow.json

  # Run with initial inputs
  circuitry run --inputs '{"add": {"a": 2, "b": 3}}' ./flow.json

  # Resume a run against a durable ledger
  circuitry run -c circuitry.yaml --run-id 4f7c... ./flow.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			c, err := circuit.ParseFile(args[0])
			if err != nil {
				return err
			}

			var initialInputs map[string]map[string]any
			if inputsJSON != "" {
				if err := json.Unmarshal([]byte(inputsJSON), &initialInputs); err != nil {
					return fmt.Errorf("failed to parse --inputs: %w", err)
				}
			}

			registry, err := nodes.Builtin()
			if err != nil {
				return err
			}

			store, err := openLedger(cmd, cfg.Ledger)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close ledger store")
				}
			}()

			executor, err := engine.New(registry, engine.Options{
				MaxParallel:        cfg.Engine.MaxParallel,
				DefaultNodeTimeout: cfg.Engine.DefaultNodeTimeout,
				Ledger:             store,
				Logger:             &log.Logger,
			})
			if err != nil {
				return err
			}

			var run *engine.Run
			if runID != "" {
				run, err = executor.ResumeRun(ctx, c, initialInputs, runID)
			} else {
				run, err = executor.Run(ctx, c, initialInputs)
			}
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))

			if run.Status != engine.RunStatusCompleted {
				return fmt.Errorf("run finished with status %s", run.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputsJSON, "inputs", "", "initial inputs as JSON, keyed by node id then input port")
	cmd.Flags().StringVar(&runID, "run-id", "", "resume an interrupted run under its original id")

	return cmd
}

// openLedger builds the configured step-ledger store.
func openLedger(cmd *cobra.Command, cfg config.LedgerConfig) (ledger.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return ledger.NewMemoryStore(), nil
	case "sqlite":
		store, err := ledger.NewSQLiteStore(ledger.SQLiteConfig{Path: cfg.Path})
		if err != nil {
			return nil, err
		}
		if err := store.Init(cmd.Context()); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend: %s", cfg.Backend)
	}
}
