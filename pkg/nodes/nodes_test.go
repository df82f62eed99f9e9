package nodes

import (
	"context"
	"testing"

	"github.com/circuitry/circuitry/pkg/circuit"
	"github.com/circuitry/circuitry/pkg/engine"
	"github.com/circuitry/circuitry/pkg/ledger"
)

func TestBuiltin_RegistersEveryKind(t *testing.T) {
	registry, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}

	kinds := []string{
		KindAdd, KindMultiply, KindDivide, KindSumDouble,
		KindSwitch, KindMerge, KindOutput,
	}
	for _, kind := range kinds {
		factory, err := registry.Resolve(kind)
		if err != nil {
			t.Errorf("Resolve(%s) failed: %v", kind, err)
			continue
		}
		instance := factory.Create()
		if shape := instance.Describe(); shape.Type != kind {
			t.Errorf("Expected Describe().Type=%s, got %s", kind, shape.Type)
		}
	}
}

func execNode(t *testing.T, node engine.ExecutableNode, inputs map[string]any) engine.Result {
	t.Helper()
	ec := &engine.ExecutionContext{Inputs: inputs}
	return node.Execute(context.Background(), ec)
}

func TestAdd(t *testing.T) {
	r := execNode(t, &Add{}, map[string]any{"a": 2.0, "b": 3.0})
	if r.Failed() {
		t.Fatalf("Add failed: %s", r.Error)
	}
	if r.Outputs["result"] != 5.0 {
		t.Errorf("Expected 5, got %v", r.Outputs["result"])
	}

	r = execNode(t, &Add{}, map[string]any{"a": 2.0})
	if !r.Failed() {
		t.Error("Expected failure for missing input")
	}
}

func TestMultiply(t *testing.T) {
	r := execNode(t, &Multiply{}, map[string]any{"a": 4.0, "b": 2.5})
	if r.Failed() {
		t.Fatalf("Multiply failed: %s", r.Error)
	}
	if r.Outputs["result"] != 10.0 {
		t.Errorf("Expected 10, got %v", r.Outputs["result"])
	}
}

func TestDivide(t *testing.T) {
	r := execNode(t, &Divide{}, map[string]any{"a": 9.0, "b": 3.0})
	if r.Failed() {
		t.Fatalf("Divide failed: %s", r.Error)
	}
	if r.Outputs["result"] != 3.0 {
		t.Errorf("Expected 3, got %v", r.Outputs["result"])
	}
}

func TestDivide_ByZero(t *testing.T) {
	r := execNode(t, &Divide{}, map[string]any{"a": 9.0, "b": 0.0})
	if !r.Failed() {
		t.Fatal("Expected division by zero to fail")
	}
	if r.Error != "division by zero" {
		t.Errorf("Unexpected error: %q", r.Error)
	}
}

func TestSumDouble(t *testing.T) {
	r := execNode(t, &SumDouble{}, map[string]any{"a": 2.0, "b": 3.0})
	if r.Failed() {
		t.Fatalf("SumDouble failed: %s", r.Error)
	}
	if r.Outputs["result"] != 10.0 {
		t.Errorf("Expected (2+3)*2=10, got %v", r.Outputs["result"])
	}
}

func TestSwitch(t *testing.T) {
	r := execNode(t, &Switch{}, map[string]any{"condition": true, "value": "payload"})
	if r.Failed() {
		t.Fatalf("Switch failed: %s", r.Error)
	}
	if r.Outputs["true"] != "payload" {
		t.Errorf("Expected payload on true output, got %v", r.Outputs["true"])
	}
	if _, ok := r.Outputs["false"]; ok {
		t.Error("Expected false output to be absent")
	}

	r = execNode(t, &Switch{}, map[string]any{"condition": false, "value": "payload"})
	if _, ok := r.Outputs["true"]; ok {
		t.Error("Expected true output to be absent")
	}
	if r.Outputs["false"] != "payload" {
		t.Errorf("Expected payload on false output, got %v", r.Outputs["false"])
	}
}

func TestSwitch_MissingCondition(t *testing.T) {
	r := execNode(t, &Switch{}, map[string]any{"value": 1.0})
	if !r.Failed() {
		t.Error("Expected failure without condition")
	}
}

func TestMerge(t *testing.T) {
	r := execNode(t, &Merge{}, map[string]any{"a": 1.0})
	if r.Failed() || r.Outputs["value"] != 1.0 {
		t.Errorf("Merge(a) = %+v", r)
	}

	r = execNode(t, &Merge{}, map[string]any{"b": 2.0})
	if r.Failed() || r.Outputs["value"] != 2.0 {
		t.Errorf("Merge(b) = %+v", r)
	}

	r = execNode(t, &Merge{}, map[string]any{})
	if !r.Failed() {
		t.Error("Expected failure when no branch delivered a value")
	}
	if r.Error != "no branch delivered a value" {
		t.Errorf("Unexpected error: %q", r.Error)
	}
}

func TestOutput(t *testing.T) {
	r := execNode(t, &Output{}, map[string]any{"value": "final"})
	if r.Failed() || r.Outputs["value"] != "final" {
		t.Errorf("Output = %+v", r)
	}

	r = execNode(t, &Output{}, map[string]any{})
	if !r.Failed() {
		t.Error("Expected failure for missing value")
	}
}

// TestBuiltinCircuit exercises the catalog end to end through the executor:
// a condition forks two arithmetic branches, only the taken branch runs, and
// the merged value lands on the output node.
func TestBuiltinCircuit(t *testing.T) {
	c := circuit.New().
		AddNode(circuit.NewNode("sw", "Switch", KindSwitch,
			[]circuit.Port{
				circuit.NewRequiredPort("condition", circuit.PortTypeBoolean),
				circuit.NewPort("value", circuit.PortTypeAny),
			},
			[]circuit.Port{
				circuit.NewPort("true", circuit.PortTypeAny),
				circuit.NewPort("false", circuit.PortTypeAny),
			})).
		AddNode(circuit.NewNode("double", "Double", KindMultiply,
			[]circuit.Port{
				circuit.NewRequiredPort("a", circuit.PortTypeNumber),
				{Name: "b", Type: circuit.PortTypeNumber, Required: true, Default: 2.0},
			},
			[]circuit.Port{circuit.NewPort("result", circuit.PortTypeNumber)})).
		AddNode(circuit.NewNode("half", "Half", KindDivide,
			[]circuit.Port{
				circuit.NewRequiredPort("a", circuit.PortTypeNumber),
				{Name: "b", Type: circuit.PortTypeNumber, Required: true, Default: 2.0},
			},
			[]circuit.Port{circuit.NewPort("result", circuit.PortTypeNumber)})).
		AddNode(circuit.NewNode("merge", "Merge", KindMerge,
			[]circuit.Port{
				circuit.NewPort("a", circuit.PortTypeAny),
				circuit.NewPort("b", circuit.PortTypeAny),
			},
			[]circuit.Port{circuit.NewPort("value", circuit.PortTypeAny)})).
		AddNode(circuit.NewNode("out", "Out", KindOutput,
			[]circuit.Port{circuit.NewRequiredPort("value", circuit.PortTypeAny)},
			[]circuit.Port{circuit.NewPort("value", circuit.PortTypeAny)})).
		AddEdge(circuit.NewEdge("e1", "sw", "true", "double", "a")).
		AddEdge(circuit.NewEdge("e2", "sw", "false", "half", "a")).
		AddEdge(circuit.NewEdge("e3", "double", "result", "merge", "a")).
		AddEdge(circuit.NewEdge("e4", "half", "result", "merge", "b")).
		AddEdge(circuit.NewEdge("e5", "merge", "value", "out", "value"))

	registry, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}

	x, err := engine.New(registry, engine.Options{Ledger: ledger.NewMemoryStore()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	run, err := x.Run(context.Background(), c, map[string]map[string]any{
		"sw": {"condition": true, "value": 21.0},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.Status != engine.RunStatusCompleted {
		t.Fatalf("Expected completed, got %s", run.Status)
	}
	if run.Nodes["half"].Status != engine.NodeStatusSkipped {
		t.Errorf("Expected untaken branch to be skipped, got %s", run.Nodes["half"].Status)
	}
	if got := run.Nodes["out"].Outputs["value"]; got != 42.0 {
		t.Errorf("Expected 42 at the output node, got %v", got)
	}
}
