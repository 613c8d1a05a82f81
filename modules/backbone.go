package modules

import (
	"github.com/JacobARose/Transfer-Learning-Library/nn"
)

// Backbone is a feature extractor usable as the first stage of a Classifier.
// Anything satisfying nn.Module qualifies as long as it can report the width
// of the representation it produces, so construction can size the downstream
// bottleneck and head without a probe forward pass.
type Backbone interface {
	nn.Module

	// OutFeatures returns the feature width of the backbone output. For
	// channel-major feature maps this is the channel count before pooling.
	OutFeatures() int
}
