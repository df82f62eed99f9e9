package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/circuitry/circuitry/pkg/circuit"
)

// ExecutableNode is the behavior contract every node kind implements. It is
// opaque to the engine: the executor is polymorphic only over this interface,
// never over concrete node types.
type ExecutableNode interface {
	// Describe returns the node's static shape: kind plus typed input and
	// output ports. Used by the validator and host UIs.
	Describe() circuit.Node

	// Execute runs the node against the assembled execution context and
	// returns exactly one of a success or an error result. Implementations
	// should honor ctx for external calls.
	Execute(ctx context.Context, ec *ExecutionContext) Result
}

// Factory produces executable instances of one node kind.
type Factory interface {
	Create() ExecutableNode
}

// FactoryFunc adapts a plain constructor function to the Factory interface.
type FactoryFunc func() ExecutableNode

// Create implements Factory.
func (f FactoryFunc) Create() ExecutableNode {
	return f()
}

// Registry resolves node-type identifiers to factories. It is supplied by
// the host, not owned by the engine, and must be safe for concurrent reads
// during a run. A lookup miss is a system-level error: it indicates a
// malformed deployment, not a data problem.
type Registry interface {
	Resolve(kind string) (Factory, error)
}

// MapRegistry is a map-backed Registry implementation for hosts and tests.
type MapRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewMapRegistry creates an empty registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a node kind. Registering the same kind twice
// is an error.
func (r *MapRegistry) Register(kind string, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("node kind is required")
	}
	if factory == nil {
		return fmt.Errorf("factory is required for kind %s", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("node kind already registered: %s", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Resolve implements Registry.
func (r *MapRegistry) Resolve(kind string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[kind]
	if !exists {
		return nil, NewSystemError(fmt.Sprintf("unknown node kind: %s", kind), nil).
			WithCode(ErrCodeUnknownKind)
	}
	return factory, nil
}

// Kinds returns the sorted list of registered node kinds.
func (r *MapRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
