package circuit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse decodes a circuit from its persisted JSON form. The decoded circuit
// is not validated; run it through pkg/validate before execution.
func Parse(data []byte) (*Circuit, error) {
	var c Circuit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse circuit: %w", err)
	}
	if c.Nodes == nil {
		c.Nodes = make([]Node, 0)
	}
	if c.Edges == nil {
		c.Edges = make([]Edge, 0)
	}
	return &c, nil
}

// ParseFile reads and decodes a circuit from a JSON file.
func ParseFile(path string) (*Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read circuit file: %w", err)
	}
	return Parse(data)
}

// JSON encodes the circuit into its persisted form.
func (c *Circuit) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode circuit: %w", err)
	}
	return data, nil
}
