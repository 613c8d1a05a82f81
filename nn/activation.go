package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/core/parallel"
)

// ReLU implements the rectified linear activation module.
type ReLU struct {
	training bool
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{training: true}
}

// Forward applies max(0, x) elementwise.
func (r *ReLU) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, cols, err := checkInput("ReLU.Forward", x, -1)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, cols, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j := 0; j < cols; j++ {
				v := x.At(i, j)
				if v > 0 {
					row[j] = v
				}
			}
		}
	})

	return out, nil
}

// Parameters returns an empty slice (ReLU has no parameters).
func (r *ReLU) Parameters() []*Parameter {
	return []*Parameter{}
}

// Train sets the module to training mode.
func (r *ReLU) Train() {
	r.training = true
}

// Eval sets the module to evaluation mode.
func (r *ReLU) Eval() {
	r.training = false
}

// IsTraining returns true if in training mode.
func (r *ReLU) IsTraining() bool {
	return r.training
}
