// Package modules provides the generic task-classifier composition that the
// domain-adaptation packages build on: a Backbone contract, the TaskClassifier
// capability consumed by training drivers, a concrete backbone → bottleneck →
// head Classifier, and persistence for module state.
package modules

import (
	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// TaskClassifier is the capability a classification model exposes to training
// drivers: the usual module surface plus feature access and the parameter
// views optimizers partition into groups.
type TaskClassifier interface {
	nn.Module

	// ForwardWithFeatures returns both the logits and the bottleneck output
	// they were computed from. Adversarial heads consume the features.
	ForwardWithFeatures(x mat.Matrix) (logits, features mat.Matrix, err error)

	// Finetune reports whether the backbone starts from pretrained weights
	// and should be updated with a reduced learning rate.
	Finetune() bool

	// BackboneParameters returns the backbone's learnable parameters under
	// "backbone."-prefixed names.
	BackboneParameters() []*nn.Parameter
	// BottleneckParameters returns the bottleneck's learnable parameters
	// under "bottleneck."-prefixed names.
	BottleneckParameters() []*nn.Parameter
	// HeadParameters returns the head's learnable parameters under
	// "head."-prefixed names.
	HeadParameters() []*nn.Parameter

	// NumClasses returns the width of the logit output.
	NumClasses() int
	// FeaturesDim returns the width of the bottleneck output.
	FeaturesDim() int
}

// Classifier composes a backbone, a bottleneck and a head into a task
// classifier. The default bottleneck is the identity and the default head is
// a single linear layer, so the minimal configuration is a linear probe on
// backbone features. Structure is fixed at construction; only the Train/Eval
// mode flags mutate afterwards.
type Classifier struct {
	backbone    Backbone
	bottleneck  nn.Module
	head        nn.Module
	featuresDim int
	numClasses  int
	finetune    bool
	training    bool
}

var _ TaskClassifier = (*Classifier)(nil)

type classifierConfig struct {
	bottleneck    nn.Module
	bottleneckDim int
	bottleneckSet bool
	head          nn.Module
	headSet       bool
	finetune      bool
}

// ClassifierOption configures a Classifier under construction.
type ClassifierOption func(*classifierConfig)

// WithBottleneck replaces the identity bottleneck with m, whose output width
// is dim. The head (default or replaced) is sized to dim.
func WithBottleneck(m nn.Module, dim int) ClassifierOption {
	return func(cfg *classifierConfig) {
		cfg.bottleneck = m
		cfg.bottleneckDim = dim
		cfg.bottleneckSet = true
	}
}

// WithHead replaces the default linear head with m. The module must accept
// FeaturesDim-wide input and produce NumClasses-wide output.
func WithHead(m nn.Module) ClassifierOption {
	return func(cfg *classifierConfig) {
		cfg.head = m
		cfg.headSet = true
	}
}

// WithFinetune sets whether the backbone is treated as pretrained. It is the
// default; pass false when training from scratch so the backbone group keeps
// the full learning rate.
func WithFinetune(finetune bool) ClassifierOption {
	return func(cfg *classifierConfig) {
		cfg.finetune = finetune
	}
}

// NewClassifier builds a backbone → bottleneck → head classifier producing
// numClasses logits.
func NewClassifier(backbone Backbone, numClasses int, opts ...ClassifierOption) (*Classifier, error) {
	if backbone == nil {
		return nil, errors.Wrap(errors.ErrNilModule, "NewClassifier: backbone")
	}
	if numClasses <= 0 {
		return nil, errors.NewValidationError("numClasses", "must be positive", numClasses)
	}
	if backbone.OutFeatures() <= 0 {
		return nil, errors.NewValidationError("backbone", "must report a positive feature width", backbone.OutFeatures())
	}

	cfg := classifierConfig{finetune: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	featuresDim := backbone.OutFeatures()
	bottleneck := nn.Module(nn.NewIdentity())
	if cfg.bottleneckSet {
		if cfg.bottleneck == nil {
			return nil, errors.Wrap(errors.ErrNilModule, "NewClassifier: bottleneck")
		}
		if cfg.bottleneckDim <= 0 {
			return nil, errors.NewValidationError("bottleneckDim", "must be positive", cfg.bottleneckDim)
		}
		bottleneck = cfg.bottleneck
		featuresDim = cfg.bottleneckDim
	}

	var head nn.Module
	if cfg.headSet {
		if cfg.head == nil {
			return nil, errors.Wrap(errors.ErrNilModule, "NewClassifier: head")
		}
		head = cfg.head
	} else {
		linear, err := nn.NewLinear(featuresDim, numClasses)
		if err != nil {
			return nil, err
		}
		head = linear
	}

	logger := log.GetLoggerWithName("modules.classifier")
	logger.Debug("Classifier constructed",
		log.ClassesKey, numClasses,
		log.FeaturesKey, featuresDim,
		"finetune", cfg.finetune)

	return &Classifier{
		backbone:    backbone,
		bottleneck:  bottleneck,
		head:        head,
		featuresDim: featuresDim,
		numClasses:  numClasses,
		finetune:    cfg.finetune,
		training:    true,
	}, nil
}

// Forward runs backbone → bottleneck → head and returns the (n, numClasses)
// logits.
func (c *Classifier) Forward(x mat.Matrix) (mat.Matrix, error) {
	logits, _, err := c.ForwardWithFeatures(x)
	return logits, err
}

// ForwardWithFeatures runs the full composition and returns both the logits
// and the (n, featuresDim) bottleneck output.
func (c *Classifier) ForwardWithFeatures(x mat.Matrix) (mat.Matrix, mat.Matrix, error) {
	features, err := c.backbone.Forward(x)
	if err != nil {
		return nil, nil, errors.Wrap(err, "classifier backbone")
	}
	features, err = c.bottleneck.Forward(features)
	if err != nil {
		return nil, nil, errors.Wrap(err, "classifier bottleneck")
	}
	logits, err := c.head.Forward(features)
	if err != nil {
		return nil, nil, errors.Wrap(err, "classifier head")
	}
	return logits, features, nil
}

// Parameters returns all learnable parameters under hierarchical names,
// ordered backbone, bottleneck, head.
func (c *Classifier) Parameters() []*nn.Parameter {
	params := c.BackboneParameters()
	params = append(params, c.BottleneckParameters()...)
	params = append(params, c.HeadParameters()...)
	return params
}

// Buffers returns all non-learnable state (e.g. batch-norm running
// statistics) under hierarchical names.
func (c *Classifier) Buffers() []*nn.Parameter {
	buffers := nn.PrefixParameters("backbone", nn.BuffersOf(c.backbone))
	buffers = append(buffers, nn.PrefixParameters("bottleneck", nn.BuffersOf(c.bottleneck))...)
	buffers = append(buffers, nn.PrefixParameters("head", nn.BuffersOf(c.head))...)
	return buffers
}

// BackboneParameters returns the backbone's learnable parameters under
// "backbone."-prefixed names. The returned copies share storage with the
// module, so in-place optimizer updates are visible to forward passes.
func (c *Classifier) BackboneParameters() []*nn.Parameter {
	return nn.PrefixParameters("backbone", c.backbone.Parameters())
}

// BottleneckParameters returns the bottleneck's learnable parameters under
// "bottleneck."-prefixed names.
func (c *Classifier) BottleneckParameters() []*nn.Parameter {
	return nn.PrefixParameters("bottleneck", c.bottleneck.Parameters())
}

// HeadParameters returns the head's learnable parameters under
// "head."-prefixed names.
func (c *Classifier) HeadParameters() []*nn.Parameter {
	return nn.PrefixParameters("head", c.head.Parameters())
}

// Train sets the classifier and all submodules to training mode.
func (c *Classifier) Train() {
	c.training = true
	c.backbone.Train()
	c.bottleneck.Train()
	c.head.Train()
}

// Eval sets the classifier and all submodules to evaluation mode.
func (c *Classifier) Eval() {
	c.training = false
	c.backbone.Eval()
	c.bottleneck.Eval()
	c.head.Eval()
}

// IsTraining returns true if in training mode.
func (c *Classifier) IsTraining() bool {
	return c.training
}

// Finetune reports whether the backbone is treated as pretrained.
func (c *Classifier) Finetune() bool {
	return c.finetune
}

// NumClasses returns the width of the logit output.
func (c *Classifier) NumClasses() int {
	return c.numClasses
}

// FeaturesDim returns the width of the bottleneck output.
func (c *Classifier) FeaturesDim() int {
	return c.featuresDim
}

// Backbone returns the backbone module.
func (c *Classifier) Backbone() Backbone {
	return c.backbone
}

// Bottleneck returns the bottleneck module.
func (c *Classifier) Bottleneck() nn.Module {
	return c.bottleneck
}

// Head returns the head module.
func (c *Classifier) Head() nn.Module {
	return c.head
}
