// Package nodes provides a small catalog of built-in node kinds. Production
// deployments register hundreds of kinds through the same registry interface;
// the catalog here covers arithmetic, conditional branching, and a
// checkpointed multi-step example, enough to exercise the engine from the CLI
// and from tests.
package nodes

import "github.com/circuitry/circuitry/pkg/engine"

// Built-in node kind identifiers.
const (
	KindAdd       = "math.add"
	KindMultiply  = "math.multiply"
	KindDivide    = "math.divide"
	KindSumDouble = "math.sumdouble"
	KindSwitch    = "logic.switch"
	KindMerge     = "logic.merge"
	KindOutput    = "core.output"
)

// Register adds every built-in node kind to the registry.
func Register(registry *engine.MapRegistry) error {
	factories := map[string]engine.Factory{
		KindAdd:       engine.FactoryFunc(func() engine.ExecutableNode { return &Add{} }),
		KindMultiply:  engine.FactoryFunc(func() engine.ExecutableNode { return &Multiply{} }),
		KindDivide:    engine.FactoryFunc(func() engine.ExecutableNode { return &Divide{} }),
		KindSumDouble: engine.FactoryFunc(func() engine.ExecutableNode { return &SumDouble{} }),
		KindSwitch:    engine.FactoryFunc(func() engine.ExecutableNode { return &Switch{} }),
		KindMerge:     engine.FactoryFunc(func() engine.ExecutableNode { return &Merge{} }),
		KindOutput:    engine.FactoryFunc(func() engine.ExecutableNode { return &Output{} }),
	}

	for kind, factory := range factories {
		if err := registry.Register(kind, factory); err != nil {
			return err
		}
	}
	return nil
}

// Builtin creates a registry pre-populated with every built-in node kind.
func Builtin() (*engine.MapRegistry, error) {
	registry := engine.NewMapRegistry()
	if err := Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
