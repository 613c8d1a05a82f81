package nn

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSetRandomSeedDeterminism(t *testing.T) {
	SetRandomSeed(42)
	first, err := NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create first layer: %v", err)
	}

	SetRandomSeed(42)
	second, err := NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create second layer: %v", err)
	}

	if !mat.Equal(first.Parameters()[0].Value, second.Parameters()[0].Value) {
		t.Error("Same seed should produce identical weight initialization")
	}

	SetRandomSeed(43)
	third, err := NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create third layer: %v", err)
	}
	if mat.Equal(first.Parameters()[0].Value, third.Parameters()[0].Value) {
		t.Error("Different seeds should produce different weight initialization")
	}
}

func TestPrefixParameters(t *testing.T) {
	params := []*Parameter{
		{Name: "weight", Value: mat.NewDense(2, 2, nil)},
		{Name: "bias", Value: mat.NewDense(1, 2, nil)},
	}

	prefixed := PrefixParameters("head", params)

	if len(prefixed) != 2 {
		t.Fatalf("Expected 2 prefixed parameters, got %d", len(prefixed))
	}
	if prefixed[0].Name != "head.weight" {
		t.Errorf("Name = %q, want %q", prefixed[0].Name, "head.weight")
	}
	if prefixed[1].Name != "head.bias" {
		t.Errorf("Name = %q, want %q", prefixed[1].Name, "head.bias")
	}

	// Copies share the underlying storage.
	if prefixed[0].Value != params[0].Value {
		t.Error("Prefixed parameter should share the value matrix")
	}
	// Originals are untouched.
	if params[0].Name != "weight" {
		t.Errorf("Original name mutated to %q", params[0].Name)
	}

	if got := PrefixParameters("x", nil); got != nil {
		t.Errorf("PrefixParameters of nil = %v, want nil", got)
	}
}

func TestBuffersOf(t *testing.T) {
	bn, err := NewBatchNorm1d(3)
	if err != nil {
		t.Fatalf("Failed to create BatchNorm1d: %v", err)
	}
	if got := BuffersOf(bn); len(got) != 2 {
		t.Errorf("BatchNorm1d buffers = %d, want 2", len(got))
	}

	if got := BuffersOf(NewReLU()); got != nil {
		t.Errorf("ReLU buffers = %v, want nil", got)
	}
}
