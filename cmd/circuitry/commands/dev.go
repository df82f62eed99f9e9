package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/validate"
)

func newDevCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development tools",
	}

	cmd.AddCommand(newDevWatchCommand())

	return cmd
}

func newDevWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <circuit.json>",
		Short: "Re-validate a circuit on every change",
		Long: `Watch a circuit JSON file and re-run validation whenever it changes.

Intended for editing circuits by hand: keep this running in a terminal and
every save prints a fresh validation report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer func() {
				_ = watcher.Close()
			}()

			// Watch the parent directory: editors commonly replace the file
			// on save, which drops a watch registered on the file itself.
			dir := filepath.Dir(path)
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}

			checkCircuit(path)

			log.Info().Str("path", path).Msg("Watching for changes")

			// Debounce rapid event bursts from a single save.
			var reloadTimer *time.Timer
			reloadDelay := 500 * time.Millisecond

			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}

					if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
						continue
					}
					if !sameFile(event.Name, path) {
						continue
					}

					if reloadTimer != nil {
						reloadTimer.Stop()
					}
					reloadTimer = time.AfterFunc(reloadDelay, func() {
						checkCircuit(path)
					})

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("Watcher error")
				}
			}
		},
	}

	return cmd
}

// checkCircuit parses and validates the circuit, logging the outcome.
func checkCircuit(path string) {
	c, err := circuit.ParseFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse circuit")
		return
	}

	report := validate.Check(c)
	if report.Valid {
		log.Info().
			Str("path", path).
			Int("nodes", len(c.Nodes)).
			Int("edges", len(c.Edges)).
			Msg("Circuit is valid")
		return
	}

	for _, msg := range report.Errors {
		log.Error().Str("path", path).Msg(msg)
	}
	log.Warn().
		Str("path", path).
		Int("errors", len(report.Errors)).
		Msg("Circuit is invalid")
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(filepath.Base(a), filepath.Base(b))
	}
	return absA == absB
}
