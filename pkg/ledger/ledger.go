// Package ledger records the completed internal steps of multi-step nodes so
// that an interrupted node invocation can be replayed without re-running work
// that already succeeded. Entries are scoped to one node within one run and
// are discarded when the host observes the run reaching a terminal state.
package ledger

import (
	"context"
	"encoding/json"
)

// Store persists step results keyed by (run, node, step index). Values are
// stored in JSON form so fresh and replayed executions observe identical
// value types. Implementations must be safe for concurrent use across nodes;
// steps within one node are written sequentially by a single invocation.
type Store interface {
	// Get returns the recorded result for a step index, with ok reporting
	// whether an entry exists.
	Get(ctx context.Context, runID, nodeID string, index int) (value json.RawMessage, ok bool, err error)

	// Put records a step result. Called at most once per (run, node, index).
	Put(ctx context.Context, runID, nodeID string, index int, value json.RawMessage) error

	// Discard removes every entry belonging to a run.
	Discard(ctx context.Context, runID string) error

	// Close releases any resources held by the store.
	Close() error
}
