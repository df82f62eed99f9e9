package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if logger.Zerolog().GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.Zerolog().GetLevel())
	}
}

func TestLogger_ScopedFields(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{zlog: zerolog.New(&buf)}

	scoped := base.NewComponentLogger("executor").WithRunID("r1").WithNodeID("n1")
	zl := scoped.Zerolog()
	zl.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}

	if entry["component"] != "executor" {
		t.Errorf("Expected component field, got %v", entry["component"])
	}
	if entry["run_id"] != "r1" {
		t.Errorf("Expected run_id field, got %v", entry["run_id"])
	}
	if entry["node_id"] != "n1" {
		t.Errorf("Expected node_id field, got %v", entry["node_id"])
	}
	if entry["message"] != "hello" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
}

func TestLogger_Context(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	ctx := logger.WithContext(context.Background())
	if got := FromContext(ctx); got != logger {
		t.Error("Expected logger to round-trip through context")
	}

	if got := FromContext(context.Background()); got == nil {
		t.Error("Expected fallback logger for empty context")
	}
}
