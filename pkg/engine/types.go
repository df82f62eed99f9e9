package engine

import (
	"fmt"
	"time"
)

// Result is the outcome of one node execution: exactly one of a success
// carrying a named-output bag, or an error carrying a human-readable message.
// The executor never interprets the message; it only records it.
type Result struct {
	// Outputs maps output port names to produced values. Outputs a node
	// intentionally does not produce (pruned branches) are simply absent.
	Outputs map[string]any `json:"outputs,omitempty"`

	// Error is the failure message. Empty on success.
	Error string `json:"error,omitempty"`
}

// Success creates a success result with the given output bag.
func Success(outputs map[string]any) Result {
	return Result{Outputs: outputs}
}

// Failf creates an error result with a formatted message.
func Failf(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Failed returns true if the result carries an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// NodeResult records the terminal (or current) state of one node within a
// run.
type NodeResult struct {
	// NodeID is the node this result belongs to.
	NodeID string `json:"node_id"`

	// Status is the node's execution state.
	Status NodeStatus `json:"status"`

	// Outputs is the produced output bag when the node completed.
	Outputs map[string]any `json:"outputs,omitempty"`

	// Error is the failure message when the node errored, or the skip
	// reason when it was skipped.
	Error string `json:"error,omitempty"`

	// ErrorClass distinguishes node failures from system trouble.
	ErrorClass ErrorClass `json:"error_class,omitempty"`

	// StartedAt is when execution of the node began.
	StartedAt time.Time `json:"started_at,omitzero"`

	// CompletedAt is when the node reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitzero"`

	// Duration is the wall-clock execution time.
	Duration time.Duration `json:"duration"`
}

// RunSummary provides statistics about a run's node results.
type RunSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Errored    int `json:"errored"`
	Skipped    int `json:"skipped"`
	NotStarted int `json:"not_started"`
}

// Run is one execution attempt over a validated circuit. It owns the
// per-node result map; step ledgers are owned by the configured ledger store
// and scoped to the run's ID.
type Run struct {
	// ID uniquely identifies this execution attempt.
	ID string `json:"id"`

	// Status is the overall run status.
	Status RunStatus `json:"status"`

	// Nodes maps node ids to their results. Every node in the circuit has
	// an entry once the run is terminal.
	Nodes map[string]*NodeResult `json:"nodes"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitzero"`

	// Duration is the total wall-clock run time.
	Duration time.Duration `json:"duration"`

	// Summary provides node-status statistics.
	Summary RunSummary `json:"summary"`
}

// summarize recomputes the run summary from the per-node results.
func (r *Run) summarize() {
	summary := RunSummary{Total: len(r.Nodes)}
	for _, nr := range r.Nodes {
		switch nr.Status {
		case NodeStatusCompleted:
			summary.Completed++
		case NodeStatusError:
			summary.Errored++
		case NodeStatusSkipped:
			summary.Skipped++
		case NodeStatusNotStarted, NodeStatusRunning:
			summary.NotStarted++
		}
	}
	r.Summary = summary
}
