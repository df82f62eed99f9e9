package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a run or node lifecycle event.
type EventType string

const (
	EventTypeRunStarted    EventType = "run.started"
	EventTypeRunCompleted  EventType = "run.completed"
	EventTypeRunCancelled  EventType = "run.cancelled"
	EventTypeNodeStarted   EventType = "node.started"
	EventTypeNodeCompleted EventType = "node.completed"
	EventTypeNodeFailed    EventType = "node.failed"
	EventTypeNodeSkipped   EventType = "node.skipped"
)

// Event is one run or node lifecycle notification, published so a host UI
// can show live progress.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Type is the event type.
	Type EventType `json:"type"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// RunID is the run the event belongs to.
	RunID string `json:"run_id"`

	// NodeID is the node the event concerns, empty for run-level events.
	NodeID string `json:"node_id,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// EventPublisher receives execution events. Implemented by the host;
// publishing must not block node execution for long.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

// publishEvent emits an event when a publisher is configured. Publish errors
// never fail execution.
func (x *Executor) publishEvent(ctx context.Context, eventType EventType, runID, nodeID, message string) {
	if x.publisher == nil {
		return
	}

	event := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		NodeID:    nodeID,
		Message:   message,
	}

	if err := x.publisher.Publish(ctx, event); err != nil {
		x.logger.Warn().Err(err).Str("event", string(eventType)).Msg("Failed to publish event")
	}
}
