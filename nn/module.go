// Package nn implements the small neural-network module system the
// transfer-learning components are built from.
//
// All batched data is a gonum mat.Matrix with rows as samples. Backbone
// feature maps are represented channel-major: a batch of (C,H,W) maps is a
// (n, C*H*W) matrix whose rows hold C contiguous blocks of H*W values; see
// GlobalAvgPool. Modules expose their learnable state as named *mat.Dense
// blocks which an external optimizer mutates in place; the package performs
// no gradient computation itself.
package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// Global random source for deterministic initialization and dropout masks.
var globalRng = rand.New(rand.NewSource(1))

// SetRandomSeed sets the package random seed for deterministic weight
// initialization and dropout masks. Call before constructing modules.
func SetRandomSeed(seed int64) {
	globalRng = rand.New(rand.NewSource(seed))
}

// Batches below this row count are processed sequentially; the goroutine
// overhead dominates for small inputs.
const parallelThreshold = 256

// Parameter is a named learnable block. Weight matrices are (in × out);
// vector-shaped parameters (bias, gamma, beta, running statistics) are
// (1 × n) row vectors so that every parameter is a *mat.Dense.
type Parameter struct {
	Name  string
	Value *mat.Dense
}

// Module defines the methods every layer implements.
type Module interface {
	// Forward computes the layer output for a batch with rows as samples.
	Forward(x mat.Matrix) (mat.Matrix, error)
	// Parameters returns the trainable parameters as a fresh slice.
	Parameters() []*Parameter
	// Train sets the module to training mode.
	Train()
	// Eval sets the module to evaluation mode.
	Eval()
	// IsTraining returns true if in training mode.
	IsTraining() bool
}

// BufferModule is implemented by modules that carry non-learnable state
// (e.g. batch-norm running statistics) that belongs in saved checkpoints but
// not in optimizer parameter groups.
type BufferModule interface {
	Buffers() []*Parameter
}

// BuffersOf returns the non-learnable state of m, or nil when m carries none.
func BuffersOf(m Module) []*Parameter {
	if b, ok := m.(BufferModule); ok {
		return b.Buffers()
	}
	return nil
}

// PrefixParameters returns copies of params with prefix prepended to each
// name, separated by a dot. The copies share the underlying value matrices,
// so optimizers and persistence see the same storage under hierarchical
// names.
func PrefixParameters(prefix string, params []*Parameter) []*Parameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]*Parameter, len(params))
	for i, p := range params {
		out[i] = &Parameter{Name: prefix + "." + p.Name, Value: p.Value}
	}
	return out
}

// checkInput validates a forward-pass input and returns its dimensions.
// wantCols < 0 skips the width check.
func checkInput(op string, x mat.Matrix, wantCols int) (int, int, error) {
	if x == nil {
		return 0, 0, errors.NewValueError(op, "input matrix is nil")
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if wantCols >= 0 && cols != wantCols {
		return 0, 0, errors.NewDimensionError(op, wantCols, cols, 1)
	}
	return rows, cols, nil
}
