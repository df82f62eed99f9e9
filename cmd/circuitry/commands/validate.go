package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/validate"
)

func newValidateCommand() *cobra.Command {
	var dot bool

	cmd := &cobra.Command{
		Use:   "validate <circuit.json>",
		Short: "Validate a circuit file",
		Long: `Validate a circuit JSON file before execution.

This command checks:
  - Duplicate node and edge ids
  - Dangling edge endpoints and unknown ports
  - Port-type compatibility on every edge
  - Cycles (every cycle-closing edge is reported)`,
		Example: `  # Validate a circuit
  circuitry validate ./flow.json

  # Validate and print a Graphviz rendering
  circuitry validate --dot ./flow.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			c, err := circuit.ParseFile(path)
			if err != nil {
				return err
			}

			report := validate.Check(c)

			if dot {
				fmt.Print(c.ToDOT())
			}

			if jsonOutput {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else if report.Valid {
				log.Info().Str("path", path).
					Int("nodes", len(c.Nodes)).
					Int("edges", len(c.Edges)).
					Msg("Circuit is valid")
			} else {
				for _, msg := range report.Errors {
					log.Error().Str("path", path).Msg(msg)
				}
			}

			if !report.Valid {
				return fmt.Errorf("circuit is invalid (%d errors)", len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "print a Graphviz DOT rendering of the circuit")

	return cmd
}
