package circuit

// Construction helpers. None of these validate: a circuit assembled here may
// still be rejected by pkg/validate, and that separation lets the validator
// run against partially-built or externally-deserialized circuits without
// construction-time failures.

// New creates an empty circuit.
func New() *Circuit {
	return &Circuit{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// NewPort creates a port with the given name and type.
func NewPort(name string, portType PortType) Port {
	return Port{Name: name, Type: portType}
}

// NewRequiredPort creates an input port whose value must be delivered before
// the owning node may execute.
func NewRequiredPort(name string, portType PortType) Port {
	return Port{Name: name, Type: portType, Required: true}
}

// NewNode creates a processor-shaped node with the given ports.
func NewNode(id, name, nodeType string, inputs, outputs []Port) Node {
	return Node{
		ID:      id,
		Name:    name,
		Type:    nodeType,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// NewInputNode creates a source-shaped node: no inputs, the given outputs.
func NewInputNode(id, name, nodeType string, outputs []Port) Node {
	return NewNode(id, name, nodeType, nil, outputs)
}

// NewOutputNode creates a sink-shaped node: the given inputs, no outputs.
func NewOutputNode(id, name, nodeType string, inputs []Port) Node {
	return NewNode(id, name, nodeType, inputs, nil)
}

// NewEdge creates a data-flow connection between two named ports.
func NewEdge(id, source, sourceOutput, target, targetInput string) Edge {
	return Edge{
		ID:           id,
		Source:       source,
		Target:       target,
		SourceOutput: sourceOutput,
		TargetInput:  targetInput,
	}
}

// AddNode appends a node to the circuit.
func (c *Circuit) AddNode(n Node) *Circuit {
	c.Nodes = append(c.Nodes, n)
	return c
}

// AddEdge appends an edge to the circuit.
func (c *Circuit) AddEdge(e Edge) *Circuit {
	c.Edges = append(c.Edges, e)
	return c
}
