package nn

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

func TestBatchNorm1dModule(t *testing.T) {
	t.Run("training mode normalizes with batch statistics", func(t *testing.T) {
		bn, err := NewBatchNorm1d(2)
		if err != nil {
			t.Fatalf("Failed to create BatchNorm1d: %v", err)
		}

		x := mat.NewDense(4, 2, []float64{
			1, 10,
			2, 20,
			3, 30,
			4, 40,
		})

		out, err := bn.Forward(x)
		if err != nil {
			t.Fatalf("BatchNorm1d forward failed: %v", err)
		}

		// Column 0: mean 2.5, population variance 1.25.
		// Column 1: mean 25, population variance 125.
		means := []float64{2.5, 25}
		variances := []float64{1.25, 125}
		for i := 0; i < 4; i++ {
			for j := 0; j < 2; j++ {
				want := (x.At(i, j) - means[j]) / math.Sqrt(variances[j]+1e-5)
				if math.Abs(out.At(i, j)-want) > 1e-9 {
					t.Errorf("out[%d][%d] = %v, want %v", i, j, out.At(i, j), want)
				}
			}
		}

		// Output columns have mean ~0 and population variance ~1.
		for j := 0; j < 2; j++ {
			sum := 0.0
			for i := 0; i < 4; i++ {
				sum += out.At(i, j)
			}
			if math.Abs(sum/4) > 1e-9 {
				t.Errorf("column %d mean = %v, want ~0", j, sum/4)
			}
		}
	})

	t.Run("running statistics updated with momentum", func(t *testing.T) {
		bn, err := NewBatchNorm1d(1)
		if err != nil {
			t.Fatalf("Failed to create BatchNorm1d: %v", err)
		}

		x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
		if _, err := bn.Forward(x); err != nil {
			t.Fatalf("BatchNorm1d forward failed: %v", err)
		}

		// running_mean = 0.9*0 + 0.1*2.5 = 0.25
		// running_var  = 0.9*1 + 0.1*1.25 = 1.025
		buffers := bn.Buffers()
		gotMean := buffers[0].Value.At(0, 0)
		gotVar := buffers[1].Value.At(0, 0)
		if math.Abs(gotMean-0.25) > 1e-9 {
			t.Errorf("running_mean = %v, want 0.25", gotMean)
		}
		if math.Abs(gotVar-1.025) > 1e-9 {
			t.Errorf("running_var = %v, want 1.025", gotVar)
		}
	})

	t.Run("eval mode uses running statistics", func(t *testing.T) {
		bn, err := NewBatchNorm1d(2)
		if err != nil {
			t.Fatalf("Failed to create BatchNorm1d: %v", err)
		}
		bn.Eval()

		// Fresh running stats: mean 0, var 1. Output is x/sqrt(1+eps).
		x := mat.NewDense(2, 2, []float64{
			2, -4,
			6, 8,
		})
		out, err := bn.Forward(x)
		if err != nil {
			t.Fatalf("BatchNorm1d eval forward failed: %v", err)
		}

		scale := 1.0 / math.Sqrt(1.0+1e-5)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				want := x.At(i, j) * scale
				if math.Abs(out.At(i, j)-want) > 1e-9 {
					t.Errorf("out[%d][%d] = %v, want %v", i, j, out.At(i, j), want)
				}
			}
		}

		// Eval forward must not touch the running statistics.
		if bn.Buffers()[0].Value.At(0, 0) != 0 {
			t.Error("Eval forward should not update running mean")
		}

		// Eval mode is deterministic: repeated calls agree.
		again, err := bn.Forward(x)
		if err != nil {
			t.Fatalf("Second eval forward failed: %v", err)
		}
		if !mat.EqualApprox(out, again, 1e-12) {
			t.Error("Eval forward should be deterministic")
		}
	})

	t.Run("gamma and beta applied", func(t *testing.T) {
		bn, err := NewBatchNorm1d(1)
		if err != nil {
			t.Fatalf("Failed to create BatchNorm1d: %v", err)
		}
		bn.Eval()

		bn.Parameters()[0].Value.Set(0, 0, 3)  // gamma
		bn.Parameters()[1].Value.Set(0, 0, -1) // beta

		x := mat.NewDense(1, 1, []float64{2})
		out, err := bn.Forward(x)
		if err != nil {
			t.Fatalf("BatchNorm1d forward failed: %v", err)
		}

		want := 3*(2.0/math.Sqrt(1.0+1e-5)) - 1
		if math.Abs(out.At(0, 0)-want) > 1e-9 {
			t.Errorf("out = %v, want %v", out.At(0, 0), want)
		}
	})

	t.Run("parameter and buffer names", func(t *testing.T) {
		bn, err := NewBatchNorm1d(3)
		if err != nil {
			t.Fatalf("Failed to create BatchNorm1d: %v", err)
		}

		params := bn.Parameters()
		if len(params) != 2 || params[0].Name != "gamma" || params[1].Name != "beta" {
			t.Errorf("Parameters = %v, want [gamma beta]", []string{params[0].Name, params[1].Name})
		}

		buffers := bn.Buffers()
		if len(buffers) != 2 || buffers[0].Name != "running_mean" || buffers[1].Name != "running_var" {
			t.Errorf("Buffers = %v, want [running_mean running_var]", []string{buffers[0].Name, buffers[1].Name})
		}
	})

	t.Run("width mismatch", func(t *testing.T) {
		bn, err := NewBatchNorm1d(3)
		if err != nil {
			t.Fatalf("Failed to create BatchNorm1d: %v", err)
		}

		_, err = bn.Forward(mat.NewDense(2, 5, nil))
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("Expected DimensionError, got %v", err)
		}
		if dimErr.Expected != 3 || dimErr.Got != 5 {
			t.Errorf("DimensionError = %+v, want Expected=3 Got=5", dimErr)
		}
	})

	t.Run("invalid width rejected", func(t *testing.T) {
		if _, err := NewBatchNorm1d(0); err == nil {
			t.Error("Expected error for zero features")
		}
	})
}
