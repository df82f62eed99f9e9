package engine

import "fmt"

// NodeStatus represents the execution state of one node within a run.
type NodeStatus string

const (
	// NodeStatusNotStarted indicates the node has not been submitted yet.
	NodeStatusNotStarted NodeStatus = "not-started"

	// NodeStatusRunning indicates the node is currently executing.
	NodeStatusRunning NodeStatus = "running"

	// NodeStatusCompleted indicates the node finished successfully.
	NodeStatusCompleted NodeStatus = "completed"

	// NodeStatusError indicates the node's execution failed.
	NodeStatusError NodeStatus = "error"

	// NodeStatusSkipped indicates the node was never invoked because a
	// dependency failed or a required input was never delivered.
	NodeStatusSkipped NodeStatus = "skipped"
)

// IsTerminal returns true if the node status represents a final state.
func (s NodeStatus) IsTerminal() bool {
	return s == NodeStatusCompleted || s == NodeStatusError || s == NodeStatusSkipped
}

// Validate checks if the node status is valid.
func (s NodeStatus) Validate() error {
	switch s {
	case NodeStatusNotStarted, NodeStatusRunning, NodeStatusCompleted,
		NodeStatusError, NodeStatusSkipped:
		return nil
	default:
		return fmt.Errorf("invalid node status: %s", s)
	}
}

// RunStatus represents the overall status of a circuit execution run.
type RunStatus string

const (
	// RunStatusPending indicates the run is created but not yet started.
	RunStatusPending RunStatus = "pending"

	// RunStatusRunning indicates the run is currently executing.
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted indicates every node completed without error.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusCompletedWithErrors indicates the run reached a terminal
	// state but at least one node errored (and its dependents were skipped).
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"

	// RunStatusCancelled indicates the run was cancelled before every
	// reachable node terminated. In-flight nodes were allowed to finish.
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal returns true if the run status represents a final state.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusCompletedWithErrors ||
		s == RunStatusCancelled
}

// Validate checks if the run status is valid.
func (s RunStatus) Validate() error {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted,
		RunStatusCompletedWithErrors, RunStatusCancelled:
		return nil
	default:
		return fmt.Errorf("invalid run status: %s", s)
	}
}
