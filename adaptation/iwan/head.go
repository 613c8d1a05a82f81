package iwan

import (
	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

const (
	// defaultHeadBottleneckDim is the hidden width of the discriminator
	// head when WithHeadBottleneckDim is not given.
	defaultHeadBottleneckDim = 1024

	// headDropoutRate is the fixed dropout rate of the discriminator head.
	headDropoutRate = 0.5
)

// ImageClassifierHead is the discriminator head of the adversarial branch: a
// feed-forward transform mapping bottleneck features to domain logits via
// dropout → linear → batch normalization → ReLU → linear. Structure is fixed
// at construction. Eval-mode forward passes are deterministic; training-mode
// passes are stochastic through the dropout stage.
type ImageClassifierHead struct {
	*nn.Sequential

	inFeatures    int
	numClasses    int
	bottleneckDim int
}

type headConfig struct {
	bottleneckDim int
}

// HeadOption configures an ImageClassifierHead under construction.
type HeadOption func(*headConfig)

// WithHeadBottleneckDim sets the hidden width of the head (default 1024).
func WithHeadBottleneckDim(dim int) HeadOption {
	return func(cfg *headConfig) {
		cfg.bottleneckDim = dim
	}
}

// NewImageClassifierHead builds a head mapping inFeatures-wide feature
// vectors to numClasses logits.
func NewImageClassifierHead(inFeatures, numClasses int, opts ...HeadOption) (*ImageClassifierHead, error) {
	if inFeatures <= 0 {
		return nil, errors.NewValidationError("inFeatures", "must be positive", inFeatures)
	}
	if numClasses <= 0 {
		return nil, errors.NewValidationError("numClasses", "must be positive", numClasses)
	}

	cfg := headConfig{bottleneckDim: defaultHeadBottleneckDim}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bottleneckDim <= 0 {
		return nil, errors.NewValidationError("bottleneckDim", "must be positive", cfg.bottleneckDim)
	}

	drop, err := nn.NewDropout(headDropoutRate)
	if err != nil {
		return nil, err
	}
	hidden, err := nn.NewLinear(inFeatures, cfg.bottleneckDim)
	if err != nil {
		return nil, err
	}
	norm, err := nn.NewBatchNorm1d(cfg.bottleneckDim)
	if err != nil {
		return nil, err
	}
	out, err := nn.NewLinear(cfg.bottleneckDim, numClasses)
	if err != nil {
		return nil, err
	}
	seq, err := nn.NewSequential(drop, hidden, norm, nn.NewReLU(), out)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("iwan.head")
	logger.Debug("ImageClassifierHead constructed",
		log.FeaturesKey, inFeatures,
		log.BottleneckDimKey, cfg.bottleneckDim,
		log.ClassesKey, numClasses)

	return &ImageClassifierHead{
		Sequential:    seq,
		inFeatures:    inFeatures,
		numClasses:    numClasses,
		bottleneckDim: cfg.bottleneckDim,
	}, nil
}

// Forward maps a (n, inFeatures) batch to (n, numClasses) logits. Inputs
// with the wrong feature width are rejected before any computation.
func (h *ImageClassifierHead) Forward(x mat.Matrix) (mat.Matrix, error) {
	if x == nil {
		return nil, errors.NewValueError("ImageClassifierHead.Forward", "input matrix is nil")
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ImageClassifierHead.Forward")
	}
	if cols != h.inFeatures {
		return nil, errors.NewDimensionError("ImageClassifierHead.Forward", h.inFeatures, cols, 1)
	}
	return h.Sequential.Forward(x)
}

// InFeatures returns the expected input width.
func (h *ImageClassifierHead) InFeatures() int {
	return h.inFeatures
}

// NumClasses returns the width of the logit output.
func (h *ImageClassifierHead) NumClasses() int {
	return h.numClasses
}

// BottleneckDim returns the hidden width of the head.
func (h *ImageClassifierHead) BottleneckDim() int {
	return h.bottleneckDim
}
