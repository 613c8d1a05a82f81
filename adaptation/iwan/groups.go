package iwan

import (
	"fmt"

	"github.com/JacobARose/Transfer-Learning-Library/modules"
	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// OptimScope selects which sub-modules a ParamGroups call covers.
type OptimScope int

const (
	// ScopeAll selects backbone, bottleneck and head parameters.
	ScopeAll OptimScope = iota

	// ScopeFeaturesOnly selects only the feature pipeline (backbone and
	// bottleneck), for phases that update the features against the
	// adversarial signal while the task head stays frozen.
	ScopeFeaturesOnly
)

// String returns the scope name.
func (s OptimScope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeFeaturesOnly:
		return "features_only"
	default:
		return fmt.Sprintf("OptimScope(%d)", int(s))
	}
}

// ParamGroup pairs one sub-module's parameters with the learning-rate
// multiplier the optimizer applies to them.
type ParamGroup struct {
	Name   string
	Params []*nn.Parameter
	LRMult float64
}

// ParamGroups partitions a classifier's parameters into per-sub-module
// optimizer groups, ordered backbone, bottleneck, head. The backbone group
// uses multiplier 0.1 when the classifier finetunes a pretrained backbone
// and 1.0 when training from scratch; bottleneck and head always use 1.0.
// Under ScopeFeaturesOnly the head group is omitted.
//
// Groups are built fresh on every call from the classifier's current
// parameters; nothing is cached and no state is mutated.
func ParamGroups(c modules.TaskClassifier, scope OptimScope) ([]ParamGroup, error) {
	if c == nil {
		return nil, errors.Wrap(errors.ErrNilModule, "ParamGroups")
	}
	switch scope {
	case ScopeAll, ScopeFeaturesOnly:
	default:
		return nil, errors.NewValidationError("scope", "unknown optimizer scope", int(scope))
	}

	backboneMult := 1.0
	if c.Finetune() {
		backboneMult = 0.1
	}

	groups := []ParamGroup{
		{Name: "backbone", Params: c.BackboneParameters(), LRMult: backboneMult},
		{Name: "bottleneck", Params: c.BottleneckParameters(), LRMult: 1.0},
	}
	if scope == ScopeAll {
		groups = append(groups, ParamGroup{Name: "head", Params: c.HeadParameters(), LRMult: 1.0})
	}
	return groups, nil
}
