package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/core/parallel"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// Linear implements a fully connected layer: y = xW + b.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // (inFeatures × outFeatures)
	bias        *Parameter // (1 × outFeatures), nil when disabled
	training    bool
}

// LinearOption configures a Linear layer.
type LinearOption func(*linearConfig)

type linearConfig struct {
	bias bool
}

// WithoutBias disables the additive bias term.
func WithoutBias() LinearOption {
	return func(c *linearConfig) {
		c.bias = false
	}
}

// NewLinear creates a fully connected layer with Xavier/Glorot uniform
// weight initialization, W ~ U(-sqrt(6/(in+out)), sqrt(6/(in+out))), and a
// zero-initialized bias.
func NewLinear(inFeatures, outFeatures int, opts ...LinearOption) (*Linear, error) {
	if inFeatures <= 0 {
		return nil, errors.NewValidationError("inFeatures", "must be positive", inFeatures)
	}
	if outFeatures <= 0 {
		return nil, errors.NewValidationError("outFeatures", "must be positive", outFeatures)
	}

	cfg := linearConfig{bias: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	bound := math.Sqrt(6.0 / float64(inFeatures+outFeatures))
	weightData := make([]float64, inFeatures*outFeatures)
	for i := range weightData {
		weightData[i] = (globalRng.Float64()*2.0 - 1.0) * bound
	}

	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight: &Parameter{
			Name:  "weight",
			Value: mat.NewDense(inFeatures, outFeatures, weightData),
		},
		training: true,
	}

	if cfg.bias {
		l.bias = &Parameter{
			Name:  "bias",
			Value: mat.NewDense(1, outFeatures, nil),
		}
	}

	return l, nil
}

// Forward performs the forward pass: y = xW + b.
func (l *Linear) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, _, err := checkInput("Linear.Forward", x, l.inFeatures)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, l.outFeatures, nil)
	out.Mul(x, l.weight.Value)

	if l.bias != nil {
		bias := l.bias.Value.RawRowView(0)
		parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				row := out.RawRowView(i)
				for j := range row {
					row[j] += bias[j]
				}
			}
		})
	}

	return out, nil
}

// Parameters returns the trainable parameters.
func (l *Linear) Parameters() []*Parameter {
	params := []*Parameter{l.weight}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

// Train sets the module to training mode.
func (l *Linear) Train() {
	l.training = true
}

// Eval sets the module to evaluation mode.
func (l *Linear) Eval() {
	l.training = false
}

// IsTraining returns true if in training mode.
func (l *Linear) IsTraining() bool {
	return l.training
}

// InFeatures returns the expected input width.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the output width.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
