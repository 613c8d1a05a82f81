package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// Dropout implements inverted dropout. In training mode each element is
// zeroed with probability p and survivors are scaled by 1/(1-p), so the
// expected activation is unchanged and no rescaling is needed at evaluation
// time. In evaluation mode the input passes through untouched.
//
// Training-mode forward draws from the package random source and is
// therefore not safe for concurrent use; evaluation-mode forward is.
type Dropout struct {
	p        float64
	training bool
}

// NewDropout creates a dropout module with drop probability p in [0, 1).
func NewDropout(p float64) (*Dropout, error) {
	if p < 0 || p >= 1 {
		return nil, errors.NewValidationError("p", "must be in [0, 1)", p)
	}
	return &Dropout{p: p, training: true}, nil
}

// Forward applies the dropout mask in training mode and is the identity in
// evaluation mode.
func (d *Dropout) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, cols, err := checkInput("Dropout.Forward", x, -1)
	if err != nil {
		return nil, err
	}

	if !d.training || d.p == 0 {
		return x, nil
	}

	scale := 1.0 / (1.0 - d.p)
	out := mat.NewDense(rows, cols, nil)
	// Sequential on purpose: mask order must be reproducible under a fixed
	// seed.
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		for j := 0; j < cols; j++ {
			if globalRng.Float64() >= d.p {
				row[j] = x.At(i, j) * scale
			}
		}
	}

	return out, nil
}

// Parameters returns an empty slice (Dropout has no parameters).
func (d *Dropout) Parameters() []*Parameter {
	return []*Parameter{}
}

// Train sets the module to training mode.
func (d *Dropout) Train() {
	d.training = true
}

// Eval sets the module to evaluation mode.
func (d *Dropout) Eval() {
	d.training = false
}

// IsTraining returns true if in training mode.
func (d *Dropout) IsTraining() bool {
	return d.training
}

// P returns the drop probability.
func (d *Dropout) P() float64 {
	return d.p
}
