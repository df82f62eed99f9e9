// Package validate checks the structural and type-level invariants of a
// circuit before execution: unique node and edge ids, resolvable edge
// endpoints and ports, port-type compatibility, and acyclicity. Checks never
// short-circuit; every detected problem is collected into a single report so
// a host can display all errors at once.
package validate

import (
	"fmt"

	"github.com/circuitry/circuitry/pkg/circuit"
)

// Report is the outcome of validating a circuit. It is always returned;
// validation itself never fails.
type Report struct {
	// Valid is true when no problem was detected.
	Valid bool `json:"valid"`

	// Errors lists every detected problem, in check order.
	Errors []string `json:"errors"`
}

// Check validates a circuit and returns the full report. A circuit whose
// report has Valid == false must not be handed to the executor.
func Check(c *circuit.Circuit) Report {
	r := Report{Errors: make([]string, 0)}
	if c == nil {
		r.Errors = append(r.Errors, "circuit is nil")
		return r
	}

	checkDuplicateNodeIDs(c, &r)
	checkDuplicateEdgeIDs(c, &r)
	checkEdges(c, &r)
	checkCycles(c, &r)

	r.Valid = len(r.Errors) == 0
	return r
}

// checkDuplicateNodeIDs reports one error per node id seen more than once.
func checkDuplicateNodeIDs(c *circuit.Circuit, r *Report) {
	seen := make(map[string]bool, len(c.Nodes))
	for i := range c.Nodes {
		id := c.Nodes[i].ID
		if seen[id] {
			r.Errors = append(r.Errors,
				fmt.Sprintf("duplicate node id: %s", id))
			continue
		}
		seen[id] = true
	}
}

// checkDuplicateEdgeIDs reports one error per edge id seen more than once.
func checkDuplicateEdgeIDs(c *circuit.Circuit, r *Report) {
	seen := make(map[string]bool, len(c.Edges))
	for _, e := range c.Edges {
		if seen[e.ID] {
			r.Errors = append(r.Errors,
				fmt.Sprintf("duplicate edge id: %s", e.ID))
			continue
		}
		seen[e.ID] = true
	}
}

// checkEdges verifies, per edge, that both endpoints exist, that the named
// ports exist on those endpoints, and that the port types are compatible.
// Errors are keyed by edge id.
func checkEdges(c *circuit.Circuit, r *Report) {
	for _, e := range c.Edges {
		source, sourceOK := c.Node(e.Source)
		if !sourceOK {
			r.Errors = append(r.Errors,
				fmt.Sprintf("edge %s: source node %s does not exist", e.ID, e.Source))
		}

		target, targetOK := c.Node(e.Target)
		if !targetOK {
			r.Errors = append(r.Errors,
				fmt.Sprintf("edge %s: target node %s does not exist", e.ID, e.Target))
		}

		var out, in circuit.Port
		outOK, inOK := false, false

		if sourceOK {
			out, outOK = source.Output(e.SourceOutput)
			if !outOK {
				r.Errors = append(r.Errors,
					fmt.Sprintf("edge %s: node %s has no output port %q",
						e.ID, e.Source, e.SourceOutput))
			}
		}
		if targetOK {
			in, inOK = target.Input(e.TargetInput)
			if !inOK {
				r.Errors = append(r.Errors,
					fmt.Sprintf("edge %s: node %s has no input port %q",
						e.ID, e.Target, e.TargetInput))
			}
		}

		if outOK && inOK && !out.Type.CompatibleWith(in.Type) {
			r.Errors = append(r.Errors,
				fmt.Sprintf("edge %s: incompatible port types %s -> %s",
					e.ID, out.Type, in.Type))
		}
	}
}

// checkCycles reports every edge that closes a directed cycle. Each edge is
// tested individually: the remaining edges form a directed graph, and the
// edge closes a cycle when a path already exists from its target back to its
// source. Testing per edge (instead of one global pass) reports every
// cycle-closing edge, not merely the first one found.
func checkCycles(c *circuit.Circuit, r *Report) {
	for _, e := range c.Edges {
		if pathExists(c.Edges, e.ID, e.Target, e.Source) {
			r.Errors = append(r.Errors,
				fmt.Sprintf("edge %s: creates a cycle (%s -> %s)",
					e.ID, e.Source, e.Target))
		}
	}
}

// pathExists reports whether a directed path exists from start to goal using
// every edge except the one with the excluded id. The search is an iterative
// depth-first traversal over an explicit stack, so depth stays bounded on
// large graphs.
func pathExists(edges []circuit.Edge, excludeEdgeID, start, goal string) bool {
	if start == goal {
		return true
	}

	adjacency := make(map[string][]string)
	for _, e := range edges {
		if e.ID == excludeEdgeID {
			continue
		}
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	stack := []string{start}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node == goal {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true

		stack = append(stack, adjacency[node]...)
	}

	return false
}
