package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

const (
	batchNormEps      = 1e-5
	batchNormMomentum = 0.1
)

// BatchNorm1d implements batch normalization over the feature axis of a
// (batch, features) input.
//
// In training mode the batch is normalized with its own statistics and the
// running statistics are updated as (1-momentum)*old + momentum*new with
// population (biased) variance. In evaluation mode the running statistics
// normalize the input, making the forward pass deterministic.
type BatchNorm1d struct {
	numFeatures int
	eps         float64
	momentum    float64
	gamma       *Parameter // scale, init 1
	beta        *Parameter // shift, init 0
	runningMean *Parameter // buffer, init 0
	runningVar  *Parameter // buffer, init 1
	training    bool
}

// NewBatchNorm1d creates a batch normalization layer for numFeatures-wide
// inputs with eps 1e-5 and momentum 0.1.
func NewBatchNorm1d(numFeatures int) (*BatchNorm1d, error) {
	if numFeatures <= 0 {
		return nil, errors.NewValidationError("numFeatures", "must be positive", numFeatures)
	}

	gammaData := make([]float64, numFeatures)
	runningVarData := make([]float64, numFeatures)
	for i := 0; i < numFeatures; i++ {
		gammaData[i] = 1.0
		runningVarData[i] = 1.0
	}

	return &BatchNorm1d{
		numFeatures: numFeatures,
		eps:         batchNormEps,
		momentum:    batchNormMomentum,
		gamma:       &Parameter{Name: "gamma", Value: mat.NewDense(1, numFeatures, gammaData)},
		beta:        &Parameter{Name: "beta", Value: mat.NewDense(1, numFeatures, nil)},
		runningMean: &Parameter{Name: "running_mean", Value: mat.NewDense(1, numFeatures, nil)},
		runningVar:  &Parameter{Name: "running_var", Value: mat.NewDense(1, numFeatures, runningVarData)},
		training:    true,
	}, nil
}

// Forward normalizes the batch feature-wise and applies the affine
// transformation gamma*xhat + beta.
func (bn *BatchNorm1d) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, _, err := checkInput("BatchNorm1d.Forward", x, bn.numFeatures)
	if err != nil {
		return nil, err
	}

	var mean, variance []float64
	if bn.training {
		mean, variance = bn.batchStatistics(x, rows)

		runningMean := bn.runningMean.Value.RawRowView(0)
		runningVar := bn.runningVar.Value.RawRowView(0)
		for j := 0; j < bn.numFeatures; j++ {
			runningMean[j] = (1.0-bn.momentum)*runningMean[j] + bn.momentum*mean[j]
			runningVar[j] = (1.0-bn.momentum)*runningVar[j] + bn.momentum*variance[j]
		}
	} else {
		mean = bn.runningMean.Value.RawRowView(0)
		variance = bn.runningVar.Value.RawRowView(0)
	}

	gamma := bn.gamma.Value.RawRowView(0)
	beta := bn.beta.Value.RawRowView(0)

	invStd := make([]float64, bn.numFeatures)
	for j := 0; j < bn.numFeatures; j++ {
		invStd[j] = 1.0 / math.Sqrt(variance[j]+bn.eps)
	}

	out := mat.NewDense(rows, bn.numFeatures, nil)
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		for j := 0; j < bn.numFeatures; j++ {
			row[j] = gamma[j]*(x.At(i, j)-mean[j])*invStd[j] + beta[j]
		}
	}

	return out, nil
}

// batchStatistics computes the per-feature mean and population variance of
// the batch.
func (bn *BatchNorm1d) batchStatistics(x mat.Matrix, rows int) ([]float64, []float64) {
	mean := make([]float64, bn.numFeatures)
	variance := make([]float64, bn.numFeatures)
	n := float64(rows)

	for i := 0; i < rows; i++ {
		for j := 0; j < bn.numFeatures; j++ {
			mean[j] += x.At(i, j)
		}
	}
	for j := 0; j < bn.numFeatures; j++ {
		mean[j] /= n
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < bn.numFeatures; j++ {
			diff := x.At(i, j) - mean[j]
			variance[j] += diff * diff
		}
	}
	for j := 0; j < bn.numFeatures; j++ {
		variance[j] /= n
	}

	return mean, variance
}

// Parameters returns the trainable parameters. Running statistics are
// buffers, not parameters; see Buffers.
func (bn *BatchNorm1d) Parameters() []*Parameter {
	return []*Parameter{bn.gamma, bn.beta}
}

// Buffers returns the running statistics for checkpointing.
func (bn *BatchNorm1d) Buffers() []*Parameter {
	return []*Parameter{bn.runningMean, bn.runningVar}
}

// Train sets the module to training mode.
func (bn *BatchNorm1d) Train() {
	bn.training = true
}

// Eval sets the module to evaluation mode.
func (bn *BatchNorm1d) Eval() {
	bn.training = false
}

// IsTraining returns true if in training mode.
func (bn *BatchNorm1d) IsTraining() bool {
	return bn.training
}

// NumFeatures returns the feature width the layer was built for.
func (bn *BatchNorm1d) NumFeatures() int {
	return bn.numFeatures
}
