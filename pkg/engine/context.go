package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/circuitry/circuitry/pkg/ledger"
	"github.com/circuitry/circuitry/pkg/telemetry"
)

// IntegrationResolver resolves a named host integration (credentials,
// connections, API clients) for a node. Supplied by the host; the engine
// never interprets the returned value.
type IntegrationResolver func(ctx context.Context, name string) (any, error)

// StepFunc is one internally-ordered step of a multi-step node.
type StepFunc func(ctx context.Context) (any, error)

// ExecutionContext is the per-invocation context handed to a node's Execute.
// It carries the assembled input bag, host environment and integration
// accessors, a node-scoped logger, and the step primitive bound to this
// node's ledger within the current run.
type ExecutionContext struct {
	// RunID identifies the current execution attempt.
	RunID string

	// NodeID identifies the node being executed.
	NodeID string

	// Inputs maps input port names to delivered values. Inputs whose source
	// was pruned or skipped are absent; node-local defaults are already
	// applied.
	Inputs map[string]any

	// Env exposes host environment values to the node.
	Env map[string]string

	// Logger is a node-scoped structured logger.
	Logger zerolog.Logger

	integrations IntegrationResolver
	steps        *stepRunner
}

// Input returns the value delivered to an input port.
func (ec *ExecutionContext) Input(name string) (any, bool) {
	v, ok := ec.Inputs[name]
	return v, ok
}

// NumberInput returns a numeric input value. JSON-decoded circuit inputs
// arrive as float64; int values from in-process hosts are accepted too.
func (ec *ExecutionContext) NumberInput(name string) (float64, error) {
	v, ok := ec.Inputs[name]
	if !ok {
		return 0, fmt.Errorf("input %q not delivered", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("input %q is not a number (got %T)", name, v)
	}
}

// BoolInput returns a boolean input value.
func (ec *ExecutionContext) BoolInput(name string) (bool, error) {
	v, ok := ec.Inputs[name]
	if !ok {
		return false, fmt.Errorf("input %q not delivered", name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("input %q is not a boolean (got %T)", name, v)
	}
	return b, nil
}

// StringInput returns a string input value.
func (ec *ExecutionContext) StringInput(name string) (string, error) {
	v, ok := ec.Inputs[name]
	if !ok {
		return "", fmt.Errorf("input %q not delivered", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("input %q is not a string (got %T)", name, v)
	}
	return s, nil
}

// Integration resolves a named host integration.
func (ec *ExecutionContext) Integration(ctx context.Context, name string) (any, error) {
	if ec.integrations == nil {
		return nil, fmt.Errorf("no integration resolver configured")
	}
	return ec.integrations(ctx, name)
}

// Step runs one durable step of a multi-step node. Each call is assigned the
// next sequential index within this node's ledger for the current run. If the
// ledger already holds a result for that index, the recorded value is
// returned without invoking fn; otherwise fn runs and its result is recorded
// before being returned. Steps execute strictly in program order; a failing
// fn stops the node and nothing is recorded for that index.
func (ec *ExecutionContext) Step(ctx context.Context, fn StepFunc) (any, error) {
	if ec.steps == nil {
		// No ledger configured for this run; the step is executed directly
		// and without durability.
		return fn(ctx)
	}
	return ec.steps.run(ctx, fn)
}

// stepRunner binds a node invocation to its step ledger. Not safe for
// concurrent use: steps within one node are sequential by contract.
type stepRunner struct {
	store   ledger.Store
	runID   string
	nodeID  string
	next    int
	metrics *telemetry.Metrics
}

// run executes one step with replay semantics.
func (r *stepRunner) run(ctx context.Context, fn StepFunc) (any, error) {
	index := r.next
	r.next++

	raw, ok, err := r.store.Get(ctx, r.runID, r.nodeID, index)
	if err != nil {
		return nil, NewSystemError(
			fmt.Sprintf("step %d: ledger read failed", index), err).
			WithCode(ErrCodeLedger).WithNode(r.nodeID)
	}
	if ok {
		r.metrics.RecordStepReplayed()
		return decodeStepValue(raw, index, r.nodeID)
	}

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	// Values round-trip through JSON even on first execution, so a node
	// observes identical types whether the step ran or was replayed.
	raw, err = json.Marshal(value)
	if err != nil {
		return nil, NewSystemError(
			fmt.Sprintf("step %d: result is not serializable", index), err).
			WithCode(ErrCodeLedger).WithNode(r.nodeID)
	}

	if err := r.store.Put(ctx, r.runID, r.nodeID, index, raw); err != nil {
		return nil, NewSystemError(
			fmt.Sprintf("step %d: ledger write failed", index), err).
			WithCode(ErrCodeLedger).WithNode(r.nodeID)
	}

	r.metrics.RecordStepExecuted()
	return decodeStepValue(raw, index, r.nodeID)
}

// decodeStepValue decodes a recorded step result.
func decodeStepValue(raw json.RawMessage, index int, nodeID string) (any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, NewSystemError(
			fmt.Sprintf("step %d: recorded result is corrupt", index), err).
			WithCode(ErrCodeLedger).WithNode(nodeID)
	}
	return value, nil
}
