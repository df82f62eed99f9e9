package nodes

import (
	"context"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/engine"
)

// Add sums two numbers.
type Add struct{}

// Describe implements engine.ExecutableNode.
func (*Add) Describe() circuit.Node {
	return circuit.NewNode("", "Add", KindAdd,
		[]circuit.Port{
			circuit.NewRequiredPort("a", circuit.PortTypeNumber),
			circuit.NewRequiredPort("b", circuit.PortTypeNumber),
		},
		[]circuit.Port{
			circuit.NewPort("result", circuit.PortTypeNumber),
		})
}

// Execute implements engine.ExecutableNode.
func (*Add) Execute(_ context.Context, ec *engine.ExecutionContext) engine.Result {
	a, err := ec.NumberInput("a")
	if err != nil {
		return engine.Failf("%v", err)
	}
	b, err := ec.NumberInput("b")
	if err != nil {
		return engine.Failf("%v", err)
	}
	return engine.Success(map[string]any{"result": a + b})
}

// Multiply multiplies two numbers.
type Multiply struct{}

// Describe implements engine.ExecutableNode.
func (*Multiply) Describe() circuit.Node {
	return circuit.NewNode("", "Multiply", KindMultiply,
		[]circuit.Port{
			circuit.NewRequiredPort("a", circuit.PortTypeNumber),
			circuit.NewRequiredPort("b", circuit.PortTypeNumber),
		},
		[]circuit.Port{
			circuit.NewPort("result", circuit.PortTypeNumber),
		})
}

// Execute implements engine.ExecutableNode.
func (*Multiply) Execute(_ context.Context, ec *engine.ExecutionContext) engine.Result {
	a, err := ec.NumberInput("a")
	if err != nil {
		return engine.Failf("%v", err)
	}
	b, err := ec.NumberInput("b")
	if err != nil {
		return engine.Failf("%v", err)
	}
	return engine.Success(map[string]any{"result": a * b})
}

// Divide divides one number by another. Division by zero is a node-defined
// error.
type Divide struct{}

// Describe implements engine.ExecutableNode.
func (*Divide) Describe() circuit.Node {
	return circuit.NewNode("", "Divide", KindDivide,
		[]circuit.Port{
			circuit.NewRequiredPort("a", circuit.PortTypeNumber),
			circuit.NewRequiredPort("b", circuit.PortTypeNumber),
		},
		[]circuit.Port{
			circuit.NewPort("result", circuit.PortTypeNumber),
		})
}

// Execute implements engine.ExecutableNode.
func (*Divide) Execute(_ context.Context, ec *engine.ExecutionContext) engine.Result {
	a, err := ec.NumberInput("a")
	if err != nil {
		return engine.Failf("%v", err)
	}
	b, err := ec.NumberInput("b")
	if err != nil {
		return engine.Failf("%v", err)
	}
	if b == 0 {
		return engine.Failf("division by zero")
	}
	return engine.Success(map[string]any{"result": a / b})
}

// SumDouble computes (a+b)*2 in two checkpointed steps, so an interrupted
// invocation replayed under the same run id skips the already-recorded sum.
type SumDouble struct{}

// Describe implements engine.ExecutableNode.
func (*SumDouble) Describe() circuit.Node {
	return circuit.NewNode("", "Sum then double", KindSumDouble,
		[]circuit.Port{
			circuit.NewRequiredPort("a", circuit.PortTypeNumber),
			circuit.NewRequiredPort("b", circuit.PortTypeNumber),
		},
		[]circuit.Port{
			circuit.NewPort("result", circuit.PortTypeNumber),
		})
}

// Execute implements engine.ExecutableNode.
func (*SumDouble) Execute(ctx context.Context, ec *engine.ExecutionContext) engine.Result {
	a, err := ec.NumberInput("a")
	if err != nil {
		return engine.Failf("%v", err)
	}
	b, err := ec.NumberInput("b")
	if err != nil {
		return engine.Failf("%v", err)
	}

	sum, err := ec.Step(ctx, func(context.Context) (any, error) {
		return a + b, nil
	})
	if err != nil {
		return engine.Failf("sum step failed: %v", err)
	}

	doubled, err := ec.Step(ctx, func(context.Context) (any, error) {
		return sum.(float64) * 2, nil
	})
	if err != nil {
		return engine.Failf("double step failed: %v", err)
	}

	return engine.Success(map[string]any{"result": doubled})
}
