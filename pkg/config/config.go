// Package config loads and validates the engine's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/circuitry/circuitry/pkg/telemetry"
)

// Config is the top-level engine configuration.
type Config struct {
	// Engine configures the executor.
	Engine EngineConfig `yaml:"engine"`

	// Ledger configures the step-ledger store.
	Ledger LedgerConfig `yaml:"ledger"`

	// Logging configures structured logging.
	Logging telemetry.LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics telemetry.MetricsConfig `yaml:"metrics"`

	// Tracing configures OpenTelemetry tracing.
	Tracing telemetry.TracingConfig `yaml:"tracing"`
}

// EngineConfig configures the executor.
type EngineConfig struct {
	// MaxParallel is the maximum number of concurrently executing nodes.
	MaxParallel int `yaml:"max_parallel" validate:"gte=0"`

	// DefaultNodeTimeout bounds each node execution. Zero disables the
	// bound.
	DefaultNodeTimeout time.Duration `yaml:"default_node_timeout" validate:"gte=0"`
}

// LedgerConfig configures where step results are recorded.
type LedgerConfig struct {
	// Backend selects the ledger store.
	Backend string `yaml:"backend" validate:"required,oneof=memory sqlite"`

	// Path is the SQLite database path. Required for the sqlite backend.
	Path string `yaml:"path" validate:"required_if=Backend sqlite"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxParallel: 10,
		},
		Ledger: LedgerConfig{
			Backend: "memory",
		},
		Logging: telemetry.LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Metrics: telemetry.MetricsConfig{
			Namespace: "circuitry",
			Path:      "/metrics",
		},
		Tracing: telemetry.TracingConfig{
			Exporter:     "none",
			SamplingRate: 1.0,
		},
	}
}

// Load reads a YAML configuration file, applies defaults for omitted
// sections, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration's structural constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
