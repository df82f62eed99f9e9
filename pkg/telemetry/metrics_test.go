package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.RecordRunStarted()
	m.RecordRunCompleted("completed", time.Second)
	m.RecordNodeExecution("math.add", "completed", time.Millisecond)
	m.RecordStepExecuted()
	m.RecordStepReplayed()
	m.RecordError("system")

	if _, err := m.Handler(); err == nil {
		t.Error("Expected Handler to fail on nil metrics")
	}
}

func TestMetrics_Disabled(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RecordRunStarted()
	m.RecordNodeExecution("math.add", "completed", time.Millisecond)

	if _, err := m.Handler(); err == nil {
		t.Error("Expected Handler to fail when collection is disabled")
	}
}

func TestMetrics_RecordsAndExposes(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "circuitry"})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RecordRunStarted()
	m.RecordRunCompleted("completed", 2*time.Second)
	m.RecordNodeExecution("math.add", "completed", 10*time.Millisecond)
	m.RecordStepExecuted()
	m.RecordStepReplayed()
	m.RecordError("node")

	handler, err := m.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, metric := range []string{
		"circuitry_runs_started_total 1",
		`circuitry_runs_completed_total{status="completed"} 1`,
		`circuitry_nodes_executed_total{kind="math.add",status="completed"} 1`,
		"circuitry_steps_executed_total 1",
		"circuitry_steps_replayed_total 1",
		`circuitry_errors_by_class_total{class="node"} 1`,
		"circuitry_active_runs 0",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected exposition to contain %q", metric)
		}
	}
}
