package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEngineError_Error(t *testing.T) {
	err := NewNodeError("execution failed", nil)
	if got := err.Error(); got != "[node] execution failed" {
		t.Errorf("Unexpected message: %q", got)
	}

	wrapped := NewSystemError("ledger write failed", fmt.Errorf("disk full")).WithNode("n1")
	got := wrapped.Error()
	if !strings.Contains(got, "[system]") {
		t.Errorf("Expected class prefix, got %q", got)
	}
	if !strings.Contains(got, "disk full") {
		t.Errorf("Expected underlying error, got %q", got)
	}
	if !strings.Contains(got, "node=n1") {
		t.Errorf("Expected node attribution, got %q", got)
	}
}

func TestEngineError_WithDetail(t *testing.T) {
	err := NewValidationError("bad circuit", nil).
		WithDetail("errors", []string{"duplicate node id: a"}).
		WithDetail("count", 1)

	if len(err.Details) != 2 {
		t.Fatalf("Expected 2 details, got %d", len(err.Details))
	}
	if err.Details["count"] != 1 {
		t.Errorf("Unexpected detail value: %v", err.Details["count"])
	}
}

func TestEngineError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewValidationError("bad circuit", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the underlying error")
	}
}

func TestEngineError_Is(t *testing.T) {
	a := NewSystemError("one", nil).WithCode(ErrCodeTimeout)
	b := NewSystemError("two", nil).WithCode(ErrCodeTimeout)
	c := NewSystemError("three", nil).WithCode(ErrCodeLedger)

	if !errors.Is(a, b) {
		t.Error("Expected same class and code to match")
	}
	if errors.Is(a, c) {
		t.Error("Expected different codes not to match")
	}
}

func TestIsSystemError(t *testing.T) {
	if !IsSystemError(NewSystemError("boom", nil)) {
		t.Error("Expected system error to be recognized")
	}
	if IsSystemError(NewNodeError("boom", nil)) {
		t.Error("Expected node error not to be a system error")
	}
	if IsSystemError(fmt.Errorf("plain")) {
		t.Error("Expected plain error not to be a system error")
	}

	wrapped := fmt.Errorf("outer: %w", NewSystemError("inner", nil))
	if !IsSystemError(wrapped) {
		t.Error("Expected wrapped system error to be recognized")
	}
}

func TestClassOf(t *testing.T) {
	if got := ClassOf(NewValidationError("bad", nil)); got != ErrorClassValidation {
		t.Errorf("Expected validation, got %s", got)
	}
	if got := ClassOf(fmt.Errorf("plain")); got != ErrorClassNode {
		t.Errorf("Expected unclassified errors to default to node, got %s", got)
	}
}

func TestNodeStatus_IsTerminal(t *testing.T) {
	terminal := []NodeStatus{NodeStatusCompleted, NodeStatusError, NodeStatusSkipped}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}
	for _, s := range []NodeStatus{NodeStatusNotStarted, NodeStatusRunning} {
		if s.IsTerminal() {
			t.Errorf("Expected %s not to be terminal", s)
		}
	}
}

func TestRunStatus_Validate(t *testing.T) {
	for _, s := range []RunStatus{
		RunStatusPending, RunStatusRunning, RunStatusCompleted,
		RunStatusCompletedWithErrors, RunStatusCancelled,
	} {
		if err := s.Validate(); err != nil {
			t.Errorf("Expected %s to be valid: %v", s, err)
		}
	}
	if err := RunStatus("exploded").Validate(); err == nil {
		t.Error("Expected unknown status to be invalid")
	}
}
