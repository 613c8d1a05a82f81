package nn

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// Sequential chains modules so the output of each feeds the next.
type Sequential struct {
	modules  []Module
	training bool
}

// NewSequential creates a Sequential container from the given modules.
func NewSequential(modules ...Module) (*Sequential, error) {
	for i, m := range modules {
		if m == nil {
			return nil, errors.Wrapf(errors.ErrNilModule, "NewSequential: position %d", i)
		}
	}
	return &Sequential{
		modules:  modules,
		training: true,
	}, nil
}

// Forward passes the input through all modules in sequence.
func (s *Sequential) Forward(x mat.Matrix) (mat.Matrix, error) {
	out := x
	var err error

	for i, module := range s.modules {
		out, err = module.Forward(out)
		if err != nil {
			return nil, errors.Wrapf(err, "sequential module %d", i)
		}
	}

	return out, nil
}

// Parameters returns all trainable parameters, names prefixed with the
// child's position ("0.weight", "2.gamma", ...).
func (s *Sequential) Parameters() []*Parameter {
	var all []*Parameter
	for i, module := range s.modules {
		all = append(all, PrefixParameters(strconv.Itoa(i), module.Parameters())...)
	}
	return all
}

// Buffers returns all non-learnable state, names prefixed like Parameters.
func (s *Sequential) Buffers() []*Parameter {
	var all []*Parameter
	for i, module := range s.modules {
		all = append(all, PrefixParameters(strconv.Itoa(i), BuffersOf(module))...)
	}
	return all
}

// Train sets all modules to training mode.
func (s *Sequential) Train() {
	s.training = true
	for _, module := range s.modules {
		module.Train()
	}
}

// Eval sets all modules to evaluation mode.
func (s *Sequential) Eval() {
	s.training = false
	for _, module := range s.modules {
		module.Eval()
	}
}

// IsTraining returns true if in training mode.
func (s *Sequential) IsTraining() bool {
	return s.training
}

// Len returns the number of contained modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}
