package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/ledger"
	"github.com/circuitry/circuitry/pkg/telemetry"
	"github.com/circuitry/circuitry/pkg/validate"
)

// Options configures an Executor. The zero value is usable with a registry:
// defaults are applied by New.
type Options struct {
	// MaxParallel is the maximum number of concurrently executing nodes.
	// Defaults to 10.
	MaxParallel int

	// DefaultNodeTimeout bounds each node execution. Zero means no timeout.
	DefaultNodeTimeout time.Duration

	// NodeTimeouts overrides the default timeout per node id.
	NodeTimeouts map[string]time.Duration

	// Env exposes host environment values to nodes.
	Env map[string]string

	// Integrations resolves named host integrations for nodes.
	Integrations IntegrationResolver

	// Ledger stores step results for multi-step nodes. Nil disables
	// durability; Step calls then execute directly.
	Ledger ledger.Store

	// Publisher receives run and node lifecycle events. Optional.
	Publisher EventPublisher

	// Metrics records execution metrics. Optional.
	Metrics *telemetry.Metrics

	// Tracer opens run and node spans. Optional.
	Tracer *telemetry.Tracer

	// Logger is the executor's structured logger. Optional.
	Logger *zerolog.Logger
}

// Executor drives execution of validated circuits. The circuit and registry
// are read-only during a run and safely shared across concurrent node
// executions; the only mutable shared state is owned by the dispatch loop.
type Executor struct {
	registry       Registry
	ledger         ledger.Store
	publisher      EventPublisher
	metrics        *telemetry.Metrics
	tracer         *telemetry.Tracer
	logger         zerolog.Logger
	maxParallel    int
	defaultTimeout time.Duration
	nodeTimeouts   map[string]time.Duration
	env            map[string]string
	integrations   IntegrationResolver
}

// New creates an executor backed by the given node registry.
func New(registry Registry, opts Options) (*Executor, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 10
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Executor{
		registry:       registry,
		ledger:         opts.Ledger,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		tracer:         opts.Tracer,
		logger:         logger,
		maxParallel:    maxParallel,
		defaultTimeout: opts.DefaultNodeTimeout,
		nodeTimeouts:   opts.NodeTimeouts,
		env:            opts.Env,
		integrations:   opts.Integrations,
	}, nil
}

// Run executes a circuit to completion and returns the per-node result map.
// The circuit is validated first; a malformed circuit returns a
// validation-class error and no run is started. Execution errors inside
// individual nodes never fail the run as a whole; they are recorded in the
// result map and isolate to the failing node's dependent subgraph.
//
// initialInputs seeds input values per node id before any edge delivery,
// letting the host feed entry nodes.
func (x *Executor) Run(ctx context.Context, c *circuit.Circuit, initialInputs map[string]map[string]any) (*Run, error) {
	return x.ResumeRun(ctx, c, initialInputs, uuid.New().String())
}

// ResumeRun executes a circuit under a caller-chosen run id. Reusing the id
// of an interrupted run makes multi-step nodes replay their recorded steps
// from the ledger instead of re-executing them.
func (x *Executor) ResumeRun(ctx context.Context, c *circuit.Circuit, initialInputs map[string]map[string]any, runID string) (*Run, error) {
	if c == nil {
		return nil, NewValidationError("circuit is nil", nil)
	}
	if runID == "" {
		return nil, NewValidationError("run id is required", nil)
	}

	if report := validate.Check(c); !report.Valid {
		return nil, NewValidationError(
			fmt.Sprintf("circuit is invalid: %s", strings.Join(report.Errors, "; ")), nil).
			WithDetail("errors", report.Errors)
	}

	run := &Run{
		ID:        runID,
		Status:    RunStatusRunning,
		Nodes:     make(map[string]*NodeResult, len(c.Nodes)),
		StartedAt: time.Now(),
	}
	for i := range c.Nodes {
		id := c.Nodes[i].ID
		run.Nodes[id] = &NodeResult{NodeID: id, Status: NodeStatusNotStarted}
	}

	logger := x.logger.With().Str("run_id", run.ID).Logger()
	logger.Info().Int("nodes", len(c.Nodes)).Int("edges", len(c.Edges)).Msg("Run started")

	ctx, span := x.tracer.StartRunSpan(ctx, run.ID)
	defer span.End()

	x.metrics.RecordRunStarted()
	x.publishEvent(ctx, EventTypeRunStarted, run.ID, "", "run started")

	state := newRunState(c, initialInputs)
	cancelled := x.dispatchLoop(ctx, run, c, state, logger)

	run.CompletedAt = time.Now()
	run.Duration = run.CompletedAt.Sub(run.StartedAt)
	run.summarize()

	switch {
	case cancelled:
		run.Status = RunStatusCancelled
		x.publishEvent(ctx, EventTypeRunCancelled, run.ID, "", "run cancelled")
	case run.Summary.Errored > 0:
		run.Status = RunStatusCompletedWithErrors
		x.publishEvent(ctx, EventTypeRunCompleted, run.ID, "", "run completed with errors")
	default:
		run.Status = RunStatusCompleted
		telemetry.RecordSuccess(span)
		x.publishEvent(ctx, EventTypeRunCompleted, run.ID, "", "run completed")
	}

	// Step ledgers are scoped to the run and discarded once it succeeds.
	// Cancelled runs and runs with errored nodes keep theirs so a re-attempt
	// replays recorded steps instead of re-executing them.
	if x.ledger != nil && run.Status == RunStatusCompleted {
		if err := x.ledger.Discard(context.WithoutCancel(ctx), run.ID); err != nil {
			logger.Warn().Err(err).Msg("Failed to discard run ledger")
		}
	}

	x.metrics.RecordRunCompleted(string(run.Status), run.Duration)
	logger.Info().
		Str("status", string(run.Status)).
		Dur("duration", run.Duration).
		Int("completed", run.Summary.Completed).
		Int("errored", run.Summary.Errored).
		Int("skipped", run.Summary.Skipped).
		Msg("Run finished")

	return run, nil
}

// dispatchLoop repeatedly selects all currently-ready nodes and submits them
// for concurrent execution until no node is ready and none is running. It is
// the only writer of run state; workers communicate outcomes over a channel.
// Returns true when the run was cancelled before completion.
func (x *Executor) dispatchLoop(ctx context.Context, run *Run, c *circuit.Circuit, st *runState, logger zerolog.Logger) bool {
	results := make(chan *nodeOutcome)
	sem := make(chan struct{}, x.maxParallel)
	running := 0
	cancelled := false

	for {
		if !cancelled {
			progressed := false
			for i := range c.Nodes {
				node := &c.Nodes[i]
				nr := run.Nodes[node.ID]
				if nr.Status != NodeStatusNotStarted {
					continue
				}
				if !st.depsTerminal(run, node.ID) {
					continue
				}

				if dep, failed := st.failedDependency(run, node.ID); failed {
					x.skipNode(ctx, run, node, fmt.Sprintf("dependency %s failed", dep), logger)
					st.failureSkipped[node.ID] = true
					progressed = true
					continue
				}

				inputs, missing := st.assembleInputs(node)
				if missing != "" {
					x.skipNode(ctx, run, node,
						fmt.Sprintf("required input %q was never delivered", missing), logger)
					progressed = true
					continue
				}

				nr.Status = NodeStatusRunning
				nr.StartedAt = time.Now()
				running++
				x.publishEvent(ctx, EventTypeNodeStarted, run.ID, node.ID, "node started")
				logger.Debug().Str("node_id", node.ID).Str("kind", node.Type).Msg("Node submitted")

				go x.runNode(ctx, run.ID, node, inputs, sem, results)
			}

			// Skips change terminal states, which may unblock further
			// dependents; rescan before waiting.
			if progressed {
				continue
			}
		}

		if running == 0 {
			break
		}

		if cancelled {
			x.applyOutcome(ctx, run, st, <-results, logger)
			running--
			continue
		}

		select {
		case out := <-results:
			x.applyOutcome(ctx, run, st, out, logger)
			running--
		case <-ctx.Done():
			// No new node is submitted, but in-flight executions run to
			// completion: node implementations may have non-idempotent
			// external side effects, so they are never forcibly preempted.
			cancelled = true
			logger.Warn().Int("in_flight", running).Msg("Run cancelled; draining in-flight nodes")
		}
	}

	return cancelled
}

// nodeOutcome carries one node's terminal result from a worker back to the
// dispatch loop.
type nodeOutcome struct {
	nodeID   string
	kind     string
	result   Result
	errClass ErrorClass
}

// runNode executes a single node on a worker slot and reports the outcome.
// Faults never escape: a registry miss, a timeout, or a panic inside the
// node's Execute all surface as an error result.
func (x *Executor) runNode(ctx context.Context, runID string, node *circuit.Node, inputs map[string]any, sem chan struct{}, results chan<- *nodeOutcome) {
	sem <- struct{}{}
	defer func() { <-sem }()

	outcome := &nodeOutcome{nodeID: node.ID, kind: node.Type}
	defer func() { results <- outcome }()

	factory, err := x.registry.Resolve(node.Type)
	if err != nil {
		outcome.result = Result{Error: err.Error()}
		outcome.errClass = ErrorClassSystem
		return
	}
	instance := factory.Create()

	ctx, span := x.tracer.StartNodeSpan(ctx, runID, node.ID, node.Type)
	defer span.End()

	ec := &ExecutionContext{
		RunID:        runID,
		NodeID:       node.ID,
		Inputs:       inputs,
		Env:          x.env,
		Logger:       x.logger.With().Str("run_id", runID).Str("node_id", node.ID).Logger(),
		integrations: x.integrations,
	}
	if x.ledger != nil {
		ec.steps = &stepRunner{
			store:   x.ledger,
			runID:   runID,
			nodeID:  node.ID,
			metrics: x.metrics,
		}
	}

	// Run cancellation must not preempt an in-flight node, so the node's
	// context is detached from the run context before the timeout applies.
	execCtx := context.WithoutCancel(ctx)
	timeout := x.timeoutFor(node.ID)
	var cancel context.CancelFunc
	if timeout > 0 {
		execCtx, cancel = context.WithTimeout(execCtx, timeout)
		defer cancel()
	}

	done := make(chan *nodeOutcome, 1)
	go func() {
		inner := &nodeOutcome{}
		defer func() {
			if r := recover(); r != nil {
				inner.result = Result{Error: fmt.Sprintf("node panicked: %v", r)}
				inner.errClass = ErrorClassSystem
			}
			done <- inner
		}()
		inner.result = instance.Execute(execCtx, ec)
		if inner.result.Failed() {
			inner.errClass = ErrorClassNode
		}
	}()

	if timeout > 0 {
		select {
		case inner := <-done:
			outcome.result = inner.result
			outcome.errClass = inner.errClass
		case <-execCtx.Done():
			// The abandoned execution may still finish; its late result is
			// discarded via the buffered channel.
			outcome.result = Result{Error: fmt.Sprintf("node execution exceeded timeout of %s", timeout)}
			outcome.errClass = ErrorClassSystem
		}
	} else {
		inner := <-done
		outcome.result = inner.result
		outcome.errClass = inner.errClass
	}

	if outcome.result.Failed() {
		telemetry.RecordError(span, NewNodeError(outcome.result.Error, nil))
	} else {
		telemetry.RecordSuccess(span)
	}
}

// timeoutFor returns the execution bound for a node.
func (x *Executor) timeoutFor(nodeID string) time.Duration {
	if t, ok := x.nodeTimeouts[nodeID]; ok {
		return t
	}
	return x.defaultTimeout
}

// applyOutcome records one node's terminal result and delivers produced
// outputs along outgoing edges. Outputs the node did not produce prune their
// edges: the target input is simply never delivered.
func (x *Executor) applyOutcome(ctx context.Context, run *Run, st *runState, out *nodeOutcome, logger zerolog.Logger) {
	nr := run.Nodes[out.nodeID]
	nr.CompletedAt = time.Now()
	nr.Duration = nr.CompletedAt.Sub(nr.StartedAt)

	if out.result.Failed() {
		nr.Status = NodeStatusError
		nr.Error = out.result.Error
		nr.ErrorClass = out.errClass
		if nr.ErrorClass == "" {
			nr.ErrorClass = ErrorClassNode
		}

		x.metrics.RecordNodeExecution(out.kind, string(NodeStatusError), nr.Duration)
		x.metrics.RecordError(string(nr.ErrorClass))
		x.publishEvent(ctx, EventTypeNodeFailed, run.ID, out.nodeID, nr.Error)
		logger.Error().
			Str("node_id", out.nodeID).
			Str("kind", out.kind).
			Str("class", string(nr.ErrorClass)).
			Str("error", nr.Error).
			Msg("Node failed")
		return
	}

	nr.Status = NodeStatusCompleted
	nr.Outputs = out.result.Outputs

	for _, e := range st.outgoing[out.nodeID] {
		if value, ok := out.result.Outputs[e.SourceOutput]; ok {
			st.deliver(e.Target, e.TargetInput, value)
		}
	}

	x.metrics.RecordNodeExecution(out.kind, string(NodeStatusCompleted), nr.Duration)
	x.publishEvent(ctx, EventTypeNodeCompleted, run.ID, out.nodeID, "node completed")
	logger.Debug().
		Str("node_id", out.nodeID).
		Dur("duration", nr.Duration).
		Msg("Node completed")
}

// skipNode marks a node skipped without invoking it.
func (x *Executor) skipNode(ctx context.Context, run *Run, node *circuit.Node, reason string, logger zerolog.Logger) {
	nr := run.Nodes[node.ID]
	nr.Status = NodeStatusSkipped
	nr.Error = reason
	nr.CompletedAt = time.Now()

	x.metrics.RecordNodeExecution(node.Type, string(NodeStatusSkipped), 0)
	x.publishEvent(ctx, EventTypeNodeSkipped, run.ID, node.ID, reason)
	logger.Debug().Str("node_id", node.ID).Str("reason", reason).Msg("Node skipped")
}
