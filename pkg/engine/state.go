package engine

import "github.com/circuitry/circuitry/pkg/circuit"

// runState holds the mutable bookkeeping of one run: the dependency relation
// derived from edges, delivered input values, and failure-skip propagation.
// Only the dispatch loop touches it.
type runState struct {
	// deps maps a node id to the distinct node ids it depends on.
	deps map[string][]string

	// outgoing maps a node id to its outgoing edges.
	outgoing map[string][]circuit.Edge

	// delivered maps node id -> input port name -> delivered value.
	delivered map[string]map[string]any

	// failureSkipped marks nodes skipped because of an upstream failure, so
	// the skip propagates to their own dependents. Nodes skipped for a
	// missing required input (branch pruning) do not propagate this way.
	failureSkipped map[string]bool
}

// newRunState derives the dependency relation from the circuit's edges and
// seeds host-provided initial inputs.
func newRunState(c *circuit.Circuit, initialInputs map[string]map[string]any) *runState {
	st := &runState{
		deps:           make(map[string][]string, len(c.Nodes)),
		outgoing:       make(map[string][]circuit.Edge, len(c.Nodes)),
		delivered:      make(map[string]map[string]any),
		failureSkipped: make(map[string]bool),
	}

	for _, e := range c.Edges {
		st.outgoing[e.Source] = append(st.outgoing[e.Source], e)

		duplicate := false
		for _, dep := range st.deps[e.Target] {
			if dep == e.Source {
				duplicate = true
				break
			}
		}
		if !duplicate {
			st.deps[e.Target] = append(st.deps[e.Target], e.Source)
		}
	}

	for nodeID, inputs := range initialInputs {
		for port, value := range inputs {
			st.deliver(nodeID, port, value)
		}
	}

	return st
}

// depsTerminal reports whether every dependency of a node has reached a
// terminal state.
func (st *runState) depsTerminal(run *Run, nodeID string) bool {
	for _, dep := range st.deps[nodeID] {
		nr, ok := run.Nodes[dep]
		if !ok || !nr.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// failedDependency returns a dependency whose failure forces this node to be
// skipped: one that errored, or one that was itself skipped because of an
// upstream failure.
func (st *runState) failedDependency(run *Run, nodeID string) (string, bool) {
	for _, dep := range st.deps[nodeID] {
		nr, ok := run.Nodes[dep]
		if !ok {
			continue
		}
		if nr.Status == NodeStatusError {
			return dep, true
		}
		if nr.Status == NodeStatusSkipped && st.failureSkipped[dep] {
			return dep, true
		}
	}
	return "", false
}

// deliver records a value for a node's input port.
func (st *runState) deliver(nodeID, port string, value any) {
	inputs, ok := st.delivered[nodeID]
	if !ok {
		inputs = make(map[string]any)
		st.delivered[nodeID] = inputs
	}
	inputs[port] = value
}

// assembleInputs builds the input bag for a node from delivered values and
// port defaults. Inputs whose source was pruned or skipped are simply absent.
// Returns the name of the first required input with no value, or "" when the
// node may execute.
func (st *runState) assembleInputs(node *circuit.Node) (map[string]any, string) {
	inputs := make(map[string]any, len(node.Inputs))
	delivered := st.delivered[node.ID]

	for _, port := range node.Inputs {
		if value, ok := delivered[port.Name]; ok {
			inputs[port.Name] = value
			continue
		}
		if port.Default != nil {
			inputs[port.Name] = port.Default
			continue
		}
		if port.Required {
			return nil, port.Name
		}
	}

	return inputs, ""
}
