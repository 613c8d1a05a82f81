package nn

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

func TestReLUModule(t *testing.T) {
	t.Run("forward pass", func(t *testing.T) {
		relu := NewReLU()

		x := mat.NewDense(2, 3, []float64{
			-1, 0, 1,
			-2, 3, -0.5,
		})

		out, err := relu.Forward(x)
		if err != nil {
			t.Fatalf("ReLU forward failed: %v", err)
		}

		want := [][]float64{
			{0, 0, 1},
			{0, 3, 0},
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				if out.At(i, j) != want[i][j] {
					t.Errorf("out[%d][%d] = %v, want %v", i, j, out.At(i, j), want[i][j])
				}
			}
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		relu := NewReLU()
		x := mat.NewDense(1, 2, []float64{-5, 5})

		if _, err := relu.Forward(x); err != nil {
			t.Fatalf("ReLU forward failed: %v", err)
		}
		if x.At(0, 0) != -5 {
			t.Error("ReLU should not mutate its input")
		}
	})

	t.Run("no parameters", func(t *testing.T) {
		relu := NewReLU()
		if len(relu.Parameters()) != 0 {
			t.Error("ReLU should have no parameters")
		}
	})
}

func TestDropoutModule(t *testing.T) {
	t.Run("rate validation", func(t *testing.T) {
		tests := []struct {
			name    string
			p       float64
			wantErr bool
		}{
			{"zero rate", 0, false},
			{"half rate", 0.5, false},
			{"near one", 0.99, false},
			{"negative", -0.1, true},
			{"exactly one", 1.0, true},
			{"above one", 1.5, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewDropout(tt.p)
				if (err != nil) != tt.wantErr {
					t.Errorf("NewDropout(%v) error = %v, wantErr %v", tt.p, err, tt.wantErr)
				}
				if tt.wantErr {
					var valErr *errors.ValidationError
					if !errors.As(err, &valErr) {
						t.Errorf("Expected ValidationError, got %T", err)
					}
				}
			})
		}
	})

	t.Run("eval mode is identity", func(t *testing.T) {
		d, err := NewDropout(0.5)
		if err != nil {
			t.Fatalf("Failed to create Dropout: %v", err)
		}
		d.Eval()

		x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		out, err := d.Forward(x)
		if err != nil {
			t.Fatalf("Dropout eval forward failed: %v", err)
		}
		if !mat.Equal(x, out) {
			t.Error("Eval-mode dropout should pass input through unchanged")
		}
	})

	t.Run("training mode zeroes or scales", func(t *testing.T) {
		SetRandomSeed(11)
		d, err := NewDropout(0.5)
		if err != nil {
			t.Fatalf("Failed to create Dropout: %v", err)
		}

		x := mat.NewDense(10, 10, nil)
		for i := 0; i < 10; i++ {
			for j := 0; j < 10; j++ {
				x.Set(i, j, 1)
			}
		}

		out, err := d.Forward(x)
		if err != nil {
			t.Fatalf("Dropout training forward failed: %v", err)
		}

		zeros := 0
		for i := 0; i < 10; i++ {
			for j := 0; j < 10; j++ {
				v := out.At(i, j)
				switch {
				case v == 0:
					zeros++
				case math.Abs(v-2.0) < 1e-12: // 1 / (1 - 0.5)
				default:
					t.Fatalf("out[%d][%d] = %v, want 0 or 2", i, j, v)
				}
			}
		}
		if zeros == 0 || zeros == 100 {
			t.Errorf("zeros = %d, want strictly between 0 and 100", zeros)
		}
	})

	t.Run("deterministic under fixed seed", func(t *testing.T) {
		x := mat.NewDense(4, 4, []float64{
			1, 2, 3, 4,
			5, 6, 7, 8,
			9, 10, 11, 12,
			13, 14, 15, 16,
		})

		d, err := NewDropout(0.3)
		if err != nil {
			t.Fatalf("Failed to create Dropout: %v", err)
		}

		SetRandomSeed(21)
		first, err := d.Forward(x)
		if err != nil {
			t.Fatalf("First forward failed: %v", err)
		}

		SetRandomSeed(21)
		second, err := d.Forward(x)
		if err != nil {
			t.Fatalf("Second forward failed: %v", err)
		}

		if !mat.Equal(first, second) {
			t.Error("Same seed should produce the same dropout mask")
		}
	})

	t.Run("zero rate passes through in training", func(t *testing.T) {
		d, err := NewDropout(0)
		if err != nil {
			t.Fatalf("Failed to create Dropout: %v", err)
		}

		x := mat.NewDense(1, 3, []float64{1, 2, 3})
		out, err := d.Forward(x)
		if err != nil {
			t.Fatalf("Dropout forward failed: %v", err)
		}
		if !mat.Equal(x, out) {
			t.Error("p=0 dropout should pass input through unchanged")
		}
	})
}
