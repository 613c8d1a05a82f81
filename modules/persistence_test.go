package modules

import (
	"bytes"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// newStatefulModule builds a module carrying both learnable parameters and
// batch-norm buffers, with non-default values in every tensor.
func newStatefulModule(t *testing.T) *nn.Sequential {
	t.Helper()
	linear, err := nn.NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create Linear: %v", err)
	}
	bn, err := nn.NewBatchNorm1d(3)
	if err != nil {
		t.Fatalf("Failed to create BatchNorm1d: %v", err)
	}
	seq, err := nn.NewSequential(linear, bn)
	if err != nil {
		t.Fatalf("Failed to create Sequential: %v", err)
	}

	// Forward a batch so the running statistics move off their init values.
	x := mat.NewDense(4, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	if _, err := seq.Forward(x); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	return seq
}

func snapshotValues(m nn.Module) []*mat.Dense {
	var out []*mat.Dense
	for _, p := range m.Parameters() {
		out = append(out, mat.DenseCopyOf(p.Value))
	}
	for _, b := range nn.BuffersOf(m) {
		out = append(out, mat.DenseCopyOf(b.Value))
	}
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	nn.SetRandomSeed(5)
	src := newStatefulModule(t)
	want := snapshotValues(src)

	var buf bytes.Buffer
	if err := SaveModelToWriter(src, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	// A freshly initialized module with a different seed has different
	// weights; loading must restore the saved ones exactly.
	nn.SetRandomSeed(99)
	dst := newStatefulModule(t)
	if err := LoadModelFromReader(dst, &buf); err != nil {
		t.Fatalf("LoadModelFromReader failed: %v", err)
	}

	got := snapshotValues(dst)
	if len(got) != len(want) {
		t.Fatalf("Tensor count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !mat.Equal(got[i], want[i]) {
			t.Errorf("Tensor %d not restored exactly", i)
		}
	}
}

func TestSaveLoadFile(t *testing.T) {
	nn.SetRandomSeed(5)
	src := newStatefulModule(t)
	want := snapshotValues(src)

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := SaveModel(src, path); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	nn.SetRandomSeed(99)
	dst := newStatefulModule(t)
	if err := LoadModel(dst, path); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	got := snapshotValues(dst)
	for i := range want {
		if !mat.Equal(got[i], want[i]) {
			t.Errorf("Tensor %d not restored exactly", i)
		}
	}
}

func TestLoadShapeMismatch(t *testing.T) {
	src, err := nn.NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create Linear: %v", err)
	}

	var buf bytes.Buffer
	if err := SaveModelToWriter(src, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	dst, err := nn.NewLinear(5, 3)
	if err != nil {
		t.Fatalf("Failed to create Linear: %v", err)
	}
	err = LoadModelFromReader(dst, &buf)
	if err == nil {
		t.Fatal("Expected error for mismatched weight shape")
	}
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("Expected DimensionError, got %T: %v", err, err)
	}
	if dimErr.Expected != 5 || dimErr.Got != 4 {
		t.Errorf("DimensionError = expected %d got %d, want expected 5 got 4", dimErr.Expected, dimErr.Got)
	}
}

func TestLoadNameMismatch(t *testing.T) {
	proj, err := nn.NewLinear(2, 2, nn.WithoutBias())
	if err != nil {
		t.Fatalf("Failed to create Linear: %v", err)
	}
	src, err := nn.NewSequential(proj)
	if err != nil {
		t.Fatalf("Failed to create Sequential: %v", err)
	}

	var buf bytes.Buffer
	if err := SaveModelToWriter(src, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	// Same tensor count, but the plain Linear names its weight "weight"
	// while the saved state has "0.weight".
	dst, err := nn.NewLinear(2, 2, nn.WithoutBias())
	if err != nil {
		t.Fatalf("Failed to create Linear: %v", err)
	}
	err = LoadModelFromReader(dst, &buf)
	if err == nil {
		t.Fatal("Expected error for mismatched parameter names")
	}
	var modelErr *errors.ModelError
	if !errors.As(err, &modelErr) {
		t.Errorf("Expected ModelError, got %T: %v", err, err)
	}
}

func TestLoadTensorCountMismatch(t *testing.T) {
	src, err := nn.NewLinear(2, 2)
	if err != nil {
		t.Fatalf("Failed to create Linear: %v", err)
	}

	var buf bytes.Buffer
	if err := SaveModelToWriter(src, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	dst, err := nn.NewBatchNorm1d(2)
	if err != nil {
		t.Fatalf("Failed to create BatchNorm1d: %v", err)
	}
	err = LoadModelFromReader(dst, &buf)
	if err == nil {
		t.Fatal("Expected error for mismatched tensor count")
	}
	var modelErr *errors.ModelError
	if !errors.As(err, &modelErr) {
		t.Errorf("Expected ModelError, got %T: %v", err, err)
	}
}

func TestPersistenceEdgeCases(t *testing.T) {
	t.Run("save nil module", func(t *testing.T) {
		var buf bytes.Buffer
		err := SaveModelToWriter(nil, &buf)
		if !errors.Is(err, errors.ErrNilModule) {
			t.Errorf("Expected ErrNilModule, got %v", err)
		}
	})

	t.Run("save stateless module", func(t *testing.T) {
		var buf bytes.Buffer
		err := SaveModelToWriter(nn.NewReLU(), &buf)
		var notReady *errors.NotReadyError
		if !errors.As(err, &notReady) {
			t.Errorf("Expected NotReadyError, got %v", err)
		}
	})

	t.Run("load missing file", func(t *testing.T) {
		linear, err := nn.NewLinear(2, 2)
		if err != nil {
			t.Fatalf("Failed to create Linear: %v", err)
		}
		err = LoadModel(linear, filepath.Join(t.TempDir(), "missing.gob"))
		var modelErr *errors.ModelError
		if !errors.As(err, &modelErr) {
			t.Errorf("Expected ModelError, got %v", err)
		}
	})
}

func TestLoadRestoresClassifierState(t *testing.T) {
	nn.SetRandomSeed(13)
	backbone, err := nn.NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create backbone: %v", err)
	}
	src, err := NewClassifier(backbone, 2)
	if err != nil {
		t.Fatalf("Failed to create Classifier: %v", err)
	}

	var buf bytes.Buffer
	if err := SaveModelToWriter(src, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	nn.SetRandomSeed(14)
	backbone2, err := nn.NewLinear(4, 3)
	if err != nil {
		t.Fatalf("Failed to create backbone: %v", err)
	}
	dst, err := NewClassifier(backbone2, 2)
	if err != nil {
		t.Fatalf("Failed to create Classifier: %v", err)
	}
	if err := LoadModelFromReader(dst, &buf); err != nil {
		t.Fatalf("LoadModelFromReader failed: %v", err)
	}

	x := mat.NewDense(2, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	srcOut, err := src.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	dstOut, err := dst.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !mat.Equal(srcOut, dstOut) {
		t.Error("Loaded classifier should produce identical logits")
	}
}
