// Package iwan implements the model components of Importance Weighted
// Adversarial Nets for partial domain adaptation (Zhang et al., CVPR 2018):
// an image classifier with a pooled bottleneck, the discriminator head of the
// adversarial branch, and the scheduler that anneals the adversarial loss
// weight over training.
package iwan

import (
	"github.com/JacobARose/Transfer-Learning-Library/modules"
	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// defaultBottleneckDim is the classifier bottleneck width used when
// WithBottleneckDim is not given.
const defaultBottleneckDim = 256

// ImageClassifier is the task classifier of the adaptation pipeline: a
// backbone followed by a pooled bottleneck (global average pooling →
// flatten → linear projection → batch normalization → ReLU) and a linear
// task head. Built once at model-build time; only the Train/Eval mode flags
// change afterwards.
type ImageClassifier struct {
	*modules.Classifier

	bottleneckDim int
}

type imageClassifierConfig struct {
	bottleneckDim int
	finetune      bool
}

// ImageClassifierOption configures an ImageClassifier under construction.
type ImageClassifierOption func(*imageClassifierConfig)

// WithBottleneckDim sets the width of the bottleneck projection
// (default 256).
func WithBottleneckDim(dim int) ImageClassifierOption {
	return func(cfg *imageClassifierConfig) {
		cfg.bottleneckDim = dim
	}
}

// WithFinetune sets whether the backbone is treated as pretrained and
// optimized at a reduced learning rate (default true).
func WithFinetune(finetune bool) ImageClassifierOption {
	return func(cfg *imageClassifierConfig) {
		cfg.finetune = finetune
	}
}

// NewImageClassifier builds the classifier for a backbone producing
// channel-major feature maps and a task with numClasses classes.
func NewImageClassifier(backbone modules.Backbone, numClasses int, opts ...ImageClassifierOption) (*ImageClassifier, error) {
	if backbone == nil {
		return nil, errors.Wrap(errors.ErrNilModule, "NewImageClassifier: backbone")
	}

	cfg := imageClassifierConfig{
		bottleneckDim: defaultBottleneckDim,
		finetune:      true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bottleneckDim <= 0 {
		return nil, errors.NewValidationError("bottleneckDim", "must be positive", cfg.bottleneckDim)
	}

	pool, err := nn.NewGlobalAvgPool(backbone.OutFeatures())
	if err != nil {
		return nil, err
	}
	proj, err := nn.NewLinear(backbone.OutFeatures(), cfg.bottleneckDim)
	if err != nil {
		return nil, err
	}
	norm, err := nn.NewBatchNorm1d(cfg.bottleneckDim)
	if err != nil {
		return nil, err
	}
	bottleneck, err := nn.NewSequential(pool, nn.NewFlatten(), proj, norm, nn.NewReLU())
	if err != nil {
		return nil, err
	}

	base, err := modules.NewClassifier(backbone, numClasses,
		modules.WithBottleneck(bottleneck, cfg.bottleneckDim),
		modules.WithFinetune(cfg.finetune))
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("iwan.classifier")
	logger.Debug("ImageClassifier constructed",
		log.ChannelsKey, backbone.OutFeatures(),
		log.BottleneckDimKey, cfg.bottleneckDim,
		log.ClassesKey, numClasses,
		"finetune", cfg.finetune)

	return &ImageClassifier{
		Classifier:    base,
		bottleneckDim: cfg.bottleneckDim,
	}, nil
}

// BottleneckDim returns the width of the bottleneck projection.
func (c *ImageClassifier) BottleneckDim() int {
	return c.bottleneckDim
}

// ParamGroups partitions the classifier's parameters into optimizer groups
// for the given scope. See the package-level ParamGroups function.
func (c *ImageClassifier) ParamGroups(scope OptimScope) ([]ParamGroup, error) {
	return ParamGroups(c, scope)
}
