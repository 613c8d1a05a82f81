package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/core/parallel"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// GlobalAvgPool averages each channel block of a channel-major feature-map
// batch down to a single value, the 2-D rendition of adaptive average
// pooling to a 1x1 spatial map.
//
// The input is (n, C*S) where S is the spatial size per channel; the layer
// infers S from the input width, so the same module handles any spatial
// resolution. The output is (n, C).
type GlobalAvgPool struct {
	channels int
	training bool
}

// NewGlobalAvgPool creates a pooling module for inputs with the given
// channel count.
func NewGlobalAvgPool(channels int) (*GlobalAvgPool, error) {
	if channels <= 0 {
		return nil, errors.NewValidationError("channels", "must be positive", channels)
	}
	return &GlobalAvgPool{channels: channels, training: true}, nil
}

// Forward reduces (n, C*S) to (n, C) channel means.
func (g *GlobalAvgPool) Forward(x mat.Matrix) (mat.Matrix, error) {
	rows, cols, err := checkInput("GlobalAvgPool.Forward", x, -1)
	if err != nil {
		return nil, err
	}
	if cols%g.channels != 0 {
		return nil, errors.NewValueError("GlobalAvgPool.Forward",
			fmt.Sprintf("input width %d is not divisible by %d channels", cols, g.channels))
	}

	blockSize := cols / g.channels
	inv := 1.0 / float64(blockSize)

	out := mat.NewDense(rows, g.channels, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for c := 0; c < g.channels; c++ {
				sum := 0.0
				base := c * blockSize
				for s := 0; s < blockSize; s++ {
					sum += x.At(i, base+s)
				}
				row[c] = sum * inv
			}
		}
	})

	return out, nil
}

// Parameters returns an empty slice (GlobalAvgPool has no parameters).
func (g *GlobalAvgPool) Parameters() []*Parameter {
	return []*Parameter{}
}

// Train sets the module to training mode.
func (g *GlobalAvgPool) Train() {
	g.training = true
}

// Eval sets the module to evaluation mode.
func (g *GlobalAvgPool) Eval() {
	g.training = false
}

// IsTraining returns true if in training mode.
func (g *GlobalAvgPool) IsTraining() bool {
	return g.training
}

// Channels returns the channel count the module was built for.
func (g *GlobalAvgPool) Channels() int {
	return g.channels
}

// Flatten guarantees a rank-2 (batch, features) output. Batches are already
// two-dimensional under the channel-major convention, so the module
// validates the input and passes it through; it marks the reshape point in
// composed pipelines.
type Flatten struct {
	training bool
}

// NewFlatten creates a new Flatten module.
func NewFlatten() *Flatten {
	return &Flatten{training: true}
}

// Forward validates the batch and returns it unchanged.
func (f *Flatten) Forward(x mat.Matrix) (mat.Matrix, error) {
	if _, _, err := checkInput("Flatten.Forward", x, -1); err != nil {
		return nil, err
	}
	return x, nil
}

// Parameters returns an empty slice (Flatten has no parameters).
func (f *Flatten) Parameters() []*Parameter {
	return []*Parameter{}
}

// Train sets the module to training mode.
func (f *Flatten) Train() {
	f.training = true
}

// Eval sets the module to evaluation mode.
func (f *Flatten) Eval() {
	f.training = false
}

// IsTraining returns true if in training mode.
func (f *Flatten) IsTraining() bool {
	return f.training
}

// Identity passes its input through unchanged. It serves as the default
// bottleneck of composed classifiers.
type Identity struct {
	training bool
}

// NewIdentity creates a new Identity module.
func NewIdentity() *Identity {
	return &Identity{training: true}
}

// Forward returns the input unchanged.
func (id *Identity) Forward(x mat.Matrix) (mat.Matrix, error) {
	if _, _, err := checkInput("Identity.Forward", x, -1); err != nil {
		return nil, err
	}
	return x, nil
}

// Parameters returns an empty slice (Identity has no parameters).
func (id *Identity) Parameters() []*Parameter {
	return []*Parameter{}
}

// Train sets the module to training mode.
func (id *Identity) Train() {
	id.training = true
}

// Eval sets the module to evaluation mode.
func (id *Identity) Eval() {
	id.training = false
}

// IsTraining returns true if in training mode.
func (id *Identity) IsTraining() bool {
	return id.training
}
