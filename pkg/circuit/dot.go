package circuit

import (
	"fmt"
	"strings"
)

// ToDOT generates a DOT format representation of the circuit for
// visualization. The output can be rendered with Graphviz tools.
func (c *Circuit) ToDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph Circuit {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n\n")

	for i := range c.Nodes {
		n := &c.Nodes[i]
		label := fmt.Sprintf("%s\\n%s", n.Name, n.Type)
		sb.WriteString(fmt.Sprintf("  %q [label=%q];\n", n.ID, label))
	}

	sb.WriteString("\n")
	for _, e := range c.Edges {
		label := fmt.Sprintf("%s -> %s", e.SourceOutput, e.TargetInput)
		sb.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n",
			e.Source, e.Target, label))
	}

	sb.WriteString("}\n")
	return sb.String()
}
