// Package circuit defines the data model for workflow graphs: typed ports,
// nodes, edges, and the circuit that contains them. The model is data only:
// construction performs no validation (see pkg/validate) and nodes carry no
// behavior (behavior is resolved at run time via the engine's node registry,
// keyed by the node's type identifier).
package circuit

import "fmt"

// PortType identifies the kind of value a port carries.
type PortType string

const (
	// PortTypeNumber carries numeric values (JSON numbers).
	PortTypeNumber PortType = "number"

	// PortTypeString carries text values.
	PortTypeString PortType = "string"

	// PortTypeBoolean carries true/false values.
	PortTypeBoolean PortType = "boolean"

	// PortTypeObject carries structured JSON values.
	PortTypeObject PortType = "object"

	// PortTypeBlob carries opaque binary payloads.
	PortTypeBlob PortType = "blob"

	// PortTypeAny is the wildcard kind, compatible with every other kind.
	PortTypeAny PortType = "any"
)

// Validate checks if the port type is one of the closed set.
func (t PortType) Validate() error {
	switch t {
	case PortTypeNumber, PortTypeString, PortTypeBoolean,
		PortTypeObject, PortTypeBlob, PortTypeAny:
		return nil
	default:
		return fmt.Errorf("invalid port type: %s", t)
	}
}

// CompatibleWith reports whether a value produced at a port of this type may
// be delivered to a port of type other. Types are compatible when they are
// identical or when either side is the wildcard kind.
func (t PortType) CompatibleWith(other PortType) bool {
	return t == other || t == PortTypeAny || other == PortTypeAny
}

// Port is a named, typed input or output slot on a node. Ports have no
// independent lifecycle; they are owned by their node.
type Port struct {
	// Name is the port name, unique within its direction on the node.
	Name string `json:"name"`

	// Type is the kind of value the port carries.
	Type PortType `json:"type"`

	// Required marks an input port whose value must be delivered before the
	// node may execute. Only meaningful on input ports.
	Required bool `json:"required,omitempty"`

	// Default is a node-local value used for an input port when no edge
	// delivers one. Only meaningful on input ports.
	Default any `json:"default,omitempty"`
}

// Node declares the shape of one unit of work: typed input and output ports
// plus the type identifier used to resolve executable behavior at run time.
type Node struct {
	// ID uniquely identifies the node within a circuit.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Type is the node-type identifier resolved via the node registry.
	Type string `json:"type"`

	// Inputs is the ordered sequence of input ports.
	Inputs []Port `json:"inputs"`

	// Outputs is the ordered sequence of output ports.
	Outputs []Port `json:"outputs"`

	// Error carries a design-time annotation, such as a configuration
	// problem reported by the host UI.
	Error string `json:"error,omitempty"`
}

// Input returns the input port with the given name.
func (n *Node) Input(name string) (Port, bool) {
	for _, p := range n.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Output returns the output port with the given name.
func (n *Node) Output(name string) (Port, bool) {
	for _, p := range n.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Edge is a directed data-flow connection: the value produced at the source
// node's named output port is delivered to the target node's named input
// port.
type Edge struct {
	// ID uniquely identifies the edge within a circuit.
	ID string `json:"id"`

	// Source is the producing node's ID.
	Source string `json:"source"`

	// Target is the consuming node's ID.
	Target string `json:"target"`

	// SourceOutput names the output port on the source node.
	SourceOutput string `json:"sourceOutput"`

	// TargetInput names the input port on the target node.
	TargetInput string `json:"targetInput"`
}

// Circuit is the full workflow graph. It is constructed at design time,
// validated once before a run begins, and read-only during execution.
type Circuit struct {
	// Nodes are the declared units of work, unique by ID.
	Nodes []Node `json:"nodes"`

	// Edges are the data-flow connections, unique by ID.
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given ID.
func (c *Circuit) Node(id string) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}
