package engine

import (
	"errors"
	"testing"

	"github.com/circuitry/circuitry/pkg/circuit"
)

func testFactory(kind string) Factory {
	return FactoryFunc(func() ExecutableNode {
		return &mockNode{shape: circuit.NewNode("n", "n", kind, nil, nil)}
	})
}

func TestMapRegistry_Register(t *testing.T) {
	r := NewMapRegistry()

	if err := r.Register("t.a", testFactory("t.a")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("t.a", testFactory("t.a")); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
	if err := r.Register("", testFactory("")); err == nil {
		t.Error("Expected empty kind to fail")
	}
	if err := r.Register("t.b", nil); err == nil {
		t.Error("Expected nil factory to fail")
	}
}

func TestMapRegistry_Resolve(t *testing.T) {
	r := NewMapRegistry()
	_ = r.Register("t.a", testFactory("t.a"))

	factory, err := r.Resolve("t.a")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if factory.Create() == nil {
		t.Error("Expected factory to produce an instance")
	}
}

func TestMapRegistry_ResolveMiss(t *testing.T) {
	r := NewMapRegistry()

	_, err := r.Resolve("t.ghost")
	if err == nil {
		t.Fatal("Expected error for unknown kind")
	}

	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("Expected EngineError, got %T", err)
	}
	if engineErr.Class != ErrorClassSystem {
		t.Errorf("Expected system class, got %s", engineErr.Class)
	}
	if engineErr.Code != ErrCodeUnknownKind {
		t.Errorf("Expected %s code, got %s", ErrCodeUnknownKind, engineErr.Code)
	}
}

func TestMapRegistry_Kinds(t *testing.T) {
	r := NewMapRegistry()
	_ = r.Register("t.c", testFactory("t.c"))
	_ = r.Register("t.a", testFactory("t.a"))
	_ = r.Register("t.b", testFactory("t.b"))

	kinds := r.Kinds()
	want := []string{"t.a", "t.b", "t.c"}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %d kinds, got %d", len(want), len(kinds))
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("Expected kinds[%d]=%s, got %s", i, k, kinds[i])
		}
	}
}
