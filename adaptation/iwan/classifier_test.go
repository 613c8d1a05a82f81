package iwan

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/modules"
	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// convStub mimics a convolutional backbone: it emits channel-major feature
// maps with spatial extent and reports only its channel count, the way a
// trimmed torchvision backbone reports out_features.
type convStub struct {
	channels int
	spatial  int
	training bool
}

func newConvStub(channels, spatial int) *convStub {
	return &convStub{channels: channels, spatial: spatial, training: true}
}

func (b *convStub) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, b.channels*b.spatial, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < b.channels*b.spatial; j++ {
			out.Set(i, j, x.At(i, 0)+float64(j))
		}
	}
	return out, nil
}

func (b *convStub) Parameters() []*nn.Parameter { return nil }
func (b *convStub) Train()                      { b.training = true }
func (b *convStub) Eval()                       { b.training = false }
func (b *convStub) IsTraining() bool            { return b.training }
func (b *convStub) OutFeatures() int            { return b.channels }

func TestNewImageClassifierDefaults(t *testing.T) {
	nn.SetRandomSeed(9)
	backbone, err := nn.NewLinear(8, 4)
	if err != nil {
		t.Fatalf("Failed to create backbone: %v", err)
	}

	clf, err := NewImageClassifier(backbone, 10)
	if err != nil {
		t.Fatalf("Failed to create ImageClassifier: %v", err)
	}

	if clf.BottleneckDim() != 256 {
		t.Errorf("BottleneckDim() = %d, want default 256", clf.BottleneckDim())
	}
	if clf.FeaturesDim() != 256 {
		t.Errorf("FeaturesDim() = %d, want 256", clf.FeaturesDim())
	}
	if clf.NumClasses() != 10 {
		t.Errorf("NumClasses() = %d, want 10", clf.NumClasses())
	}
	if !clf.Finetune() {
		t.Error("Finetune() should default to true")
	}

	bottleneck, ok := clf.Bottleneck().(*nn.Sequential)
	if !ok {
		t.Fatalf("Bottleneck should be a Sequential, got %T", clf.Bottleneck())
	}
	if bottleneck.Len() != 5 {
		t.Errorf("Bottleneck Len() = %d, want 5 stages", bottleneck.Len())
	}

	// The composed classifier must satisfy the training-driver contract.
	var _ modules.TaskClassifier = clf
}

func TestImageClassifierForward(t *testing.T) {
	nn.SetRandomSeed(9)
	backbone := newConvStub(3, 4)

	clf, err := NewImageClassifier(backbone, 2, WithBottleneckDim(6))
	if err != nil {
		t.Fatalf("Failed to create ImageClassifier: %v", err)
	}

	x := mat.NewDense(2, 1, []float64{1, 10})
	logits, features, err := clf.ForwardWithFeatures(x)
	if err != nil {
		t.Fatalf("ForwardWithFeatures failed: %v", err)
	}

	if r, c := logits.Dims(); r != 2 || c != 2 {
		t.Errorf("Logits dims = (%d, %d), want (2, 2)", r, c)
	}
	if r, c := features.Dims(); r != 2 || c != 6 {
		t.Errorf("Features dims = (%d, %d), want (2, 6)", r, c)
	}

	// The bottleneck ends in a ReLU, so features are never negative.
	rows, cols := features.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if features.At(i, j) < 0 {
				t.Fatalf("features[%d][%d] = %v, want non-negative", i, j, features.At(i, j))
			}
		}
	}
}

func TestImageClassifierEvalDeterministic(t *testing.T) {
	nn.SetRandomSeed(9)
	backbone := newConvStub(2, 3)

	clf, err := NewImageClassifier(backbone, 2, WithBottleneckDim(4))
	if err != nil {
		t.Fatalf("Failed to create ImageClassifier: %v", err)
	}
	clf.Eval()

	x := mat.NewDense(2, 1, []float64{1, 5})
	first, err := clf.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	second, err := clf.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !mat.Equal(first, second) {
		t.Error("Eval-mode forward should be deterministic")
	}
	if backbone.IsTraining() {
		t.Error("Eval should reach the backbone")
	}
}

func TestImageClassifierBottleneckNames(t *testing.T) {
	nn.SetRandomSeed(9)
	backbone := newConvStub(2, 2)

	clf, err := NewImageClassifier(backbone, 2, WithBottleneckDim(4))
	if err != nil {
		t.Fatalf("Failed to create ImageClassifier: %v", err)
	}

	// Pool, Flatten and ReLU carry no parameters; the projection sits at
	// position 2 and the normalization at position 3.
	want := []string{"bottleneck.2.weight", "bottleneck.2.bias", "bottleneck.3.gamma", "bottleneck.3.beta"}
	params := clf.BottleneckParameters()
	if len(params) != len(want) {
		t.Fatalf("Bottleneck parameter count = %d, want %d", len(params), len(want))
	}
	for i, name := range want {
		if params[i].Name != name {
			t.Errorf("params[%d].Name = %q, want %q", i, params[i].Name, name)
		}
	}

	buffers := clf.Buffers()
	wantBuffers := []string{"bottleneck.3.running_mean", "bottleneck.3.running_var"}
	if len(buffers) != len(wantBuffers) {
		t.Fatalf("Buffer count = %d, want %d", len(buffers), len(wantBuffers))
	}
	for i, name := range wantBuffers {
		if buffers[i].Name != name {
			t.Errorf("buffers[%d].Name = %q, want %q", i, buffers[i].Name, name)
		}
	}
}

func TestImageClassifierPoolUsesChannelCount(t *testing.T) {
	nn.SetRandomSeed(9)
	// 3 channels over 5 spatial positions; the pool must reduce 15 columns
	// to 3 before the projection, or the Linear width check fails.
	backbone := newConvStub(3, 5)

	clf, err := NewImageClassifier(backbone, 2, WithBottleneckDim(4))
	if err != nil {
		t.Fatalf("Failed to create ImageClassifier: %v", err)
	}

	x := mat.NewDense(1, 1, []float64{2})
	if _, err := clf.Forward(x); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
}

func TestImageClassifierValidation(t *testing.T) {
	t.Run("nil backbone", func(t *testing.T) {
		_, err := NewImageClassifier(nil, 2)
		if !errors.Is(err, errors.ErrNilModule) {
			t.Errorf("Expected ErrNilModule, got %v", err)
		}
	})

	t.Run("non-positive bottleneck dim", func(t *testing.T) {
		_, err := NewImageClassifier(newConvStub(2, 2), 2, WithBottleneckDim(0))
		var valErr *errors.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("non-positive classes", func(t *testing.T) {
		_, err := NewImageClassifier(newConvStub(2, 2), 0, WithBottleneckDim(4))
		var valErr *errors.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("finetune override", func(t *testing.T) {
		clf, err := NewImageClassifier(newConvStub(2, 2), 2, WithBottleneckDim(4), WithFinetune(false))
		if err != nil {
			t.Fatalf("Failed to create ImageClassifier: %v", err)
		}
		if clf.Finetune() {
			t.Error("WithFinetune(false) should disable finetune")
		}
	})
}

func TestImageClassifierBadBackboneWidth(t *testing.T) {
	nn.SetRandomSeed(9)
	// The backbone reports 4 channels but emits 6 columns, which is not
	// divisible by 4; the pool must reject the batch.
	clf, err := NewImageClassifier(&widthLiar{channels: 4, emit: 6}, 2, WithBottleneckDim(4))
	if err != nil {
		t.Fatalf("Failed to create ImageClassifier: %v", err)
	}

	x := mat.NewDense(1, 1, []float64{1})
	_, fwdErr := clf.Forward(x)
	if fwdErr == nil {
		t.Fatal("Expected error for backbone width not divisible by channels")
	}
	var valErr *errors.ValueError
	if !errors.As(fwdErr, &valErr) {
		t.Errorf("Expected ValueError from the pool, got %T: %v", fwdErr, fwdErr)
	}
	if !strings.Contains(fwdErr.Error(), "classifier bottleneck") {
		t.Errorf("Error should name the failing stage, got: %v", fwdErr)
	}
}

// widthLiar reports one channel count but emits another width.
type widthLiar struct {
	channels int
	emit     int
	training bool
}

func (b *widthLiar) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, b.emit, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < b.emit; j++ {
			out.Set(i, j, 1)
		}
	}
	return out, nil
}

func (b *widthLiar) Parameters() []*nn.Parameter { return nil }
func (b *widthLiar) Train()                      { b.training = true }
func (b *widthLiar) Eval()                       { b.training = false }
func (b *widthLiar) IsTraining() bool            { return b.training }
func (b *widthLiar) OutFeatures() int            { return b.channels }
