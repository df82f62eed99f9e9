package nodes

import (
	"context"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/engine"
)

// Switch is the fork-shaped node: a boolean condition selects exactly one of
// the two branch outputs to carry the value. The other output is
// intentionally not produced, so edges hanging off it are pruned at run time.
// Branching is a data-flow fact, not a graph-structural one; the circuit
// stays acyclic.
type Switch struct{}

// Describe implements engine.ExecutableNode.
func (*Switch) Describe() circuit.Node {
	return circuit.NewNode("", "Switch", KindSwitch,
		[]circuit.Port{
			circuit.NewRequiredPort("condition", circuit.PortTypeBoolean),
			circuit.NewPort("value", circuit.PortTypeAny),
		},
		[]circuit.Port{
			circuit.NewPort("true", circuit.PortTypeAny),
			circuit.NewPort("false", circuit.PortTypeAny),
		})
}

// Execute implements engine.ExecutableNode.
func (*Switch) Execute(_ context.Context, ec *engine.ExecutionContext) engine.Result {
	condition, err := ec.BoolInput("condition")
	if err != nil {
		return engine.Failf("%v", err)
	}

	value, ok := ec.Input("value")
	if !ok {
		value = condition
	}

	if condition {
		return engine.Success(map[string]any{"true": value})
	}
	return engine.Success(map[string]any{"false": value})
}

// Merge is the join-shaped node: it accepts values from mutually exclusive
// upstream branches and passes through the first one delivered. Requiring at
// least one delivered branch is this node's own validation, not the
// executor's.
type Merge struct{}

// Describe implements engine.ExecutableNode.
func (*Merge) Describe() circuit.Node {
	return circuit.NewNode("", "Merge", KindMerge,
		[]circuit.Port{
			circuit.NewPort("a", circuit.PortTypeAny),
			circuit.NewPort("b", circuit.PortTypeAny),
		},
		[]circuit.Port{
			circuit.NewPort("value", circuit.PortTypeAny),
		})
}

// Execute implements engine.ExecutableNode.
func (*Merge) Execute(_ context.Context, ec *engine.ExecutionContext) engine.Result {
	if value, ok := ec.Input("a"); ok {
		return engine.Success(map[string]any{"value": value})
	}
	if value, ok := ec.Input("b"); ok {
		return engine.Success(map[string]any{"value": value})
	}
	return engine.Failf("no branch delivered a value")
}

// Output is a sink that echoes its input, letting hosts read a run's final
// values off the result map.
type Output struct{}

// Describe implements engine.ExecutableNode.
func (*Output) Describe() circuit.Node {
	return circuit.NewNode("", "Output", KindOutput,
		[]circuit.Port{
			circuit.NewRequiredPort("value", circuit.PortTypeAny),
		},
		[]circuit.Port{
			circuit.NewPort("value", circuit.PortTypeAny),
		})
}

// Execute implements engine.ExecutableNode.
func (*Output) Execute(_ context.Context, ec *engine.ExecutionContext) engine.Result {
	value, ok := ec.Input("value")
	if !ok {
		return engine.Failf("input %q not delivered", "value")
	}
	return engine.Success(map[string]any{"value": value})
}
