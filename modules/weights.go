package modules

import (
	"encoding/json"

	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// WeightsVersion is the current ModelWeights format version.
const WeightsVersion = "1.0.0"

// WeightTensor is one named parameter block in an exported ModelWeights.
type WeightTensor struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// ModelWeights is the portable JSON form of a module's state, for interchange
// with tooling outside this library. The gob path (SaveModel/LoadModel) is
// the checkpoint format; this one trades compactness for readability.
type ModelWeights struct {
	// ModelType identifies the architecture (e.g. "ImageClassifierHead").
	ModelType string `json:"model_type"`

	// Version is the format version, for compatibility checks.
	Version string `json:"version"`

	// Params holds the learnable parameters by hierarchical name.
	Params map[string]WeightTensor `json:"params"`

	// Buffers holds non-learnable state (running statistics) by name.
	Buffers map[string]WeightTensor `json:"buffers,omitempty"`

	// Hyperparameters records the construction-time settings.
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// Metadata carries additional information (training statistics etc.).
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func exportTensor(p *nn.Parameter) WeightTensor {
	rows, cols := p.Value.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, p.Value.RawRowView(i)...)
	}
	return WeightTensor{Rows: rows, Cols: cols, Data: data}
}

// ExportWeights captures the module's current parameters and buffers as a
// ModelWeights value.
func ExportWeights(m nn.Module, modelType string) (*ModelWeights, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrNilModule, "ExportWeights")
	}
	params := m.Parameters()
	buffers := nn.BuffersOf(m)
	if len(params) == 0 && len(buffers) == 0 {
		return nil, errors.NewNotReadyError("module", "ExportWeights")
	}

	mw := &ModelWeights{
		ModelType: modelType,
		Version:   WeightsVersion,
		Params:    make(map[string]WeightTensor, len(params)),
	}
	for _, p := range params {
		mw.Params[p.Name] = exportTensor(p)
	}
	if len(buffers) > 0 {
		mw.Buffers = make(map[string]WeightTensor, len(buffers))
		for _, b := range buffers {
			mw.Buffers[b.Name] = exportTensor(b)
		}
	}
	return mw, nil
}

// ToJSON serializes the weights as indented JSON.
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON deserializes weights from JSON.
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate checks structural consistency of the weights.
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.New("model_type is required")
	}
	if mw.Version == "" {
		return errors.New("version is required")
	}
	for name, t := range mw.Params {
		if len(t.Data) != t.Rows*t.Cols {
			return errors.Newf("parameter %q: data length %d does not match shape (%d, %d)",
				name, len(t.Data), t.Rows, t.Cols)
		}
	}
	for name, t := range mw.Buffers {
		if len(t.Data) != t.Rows*t.Cols {
			return errors.Newf("buffer %q: data length %d does not match shape (%d, %d)",
				name, len(t.Data), t.Rows, t.Cols)
		}
	}
	return nil
}

// Clone creates a deep copy of the weights.
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType: mw.ModelType,
		Version:   mw.Version,
		Params:    make(map[string]WeightTensor, len(mw.Params)),
	}

	cloneTensor := func(t WeightTensor) WeightTensor {
		data := make([]float64, len(t.Data))
		copy(data, t.Data)
		return WeightTensor{Rows: t.Rows, Cols: t.Cols, Data: data}
	}

	for name, t := range mw.Params {
		clone.Params[name] = cloneTensor(t)
	}
	if mw.Buffers != nil {
		clone.Buffers = make(map[string]WeightTensor, len(mw.Buffers))
		for name, t := range mw.Buffers {
			clone.Buffers[name] = cloneTensor(t)
		}
	}
	if mw.Hyperparameters != nil {
		clone.Hyperparameters = make(map[string]interface{}, len(mw.Hyperparameters))
		for k, v := range mw.Hyperparameters {
			clone.Hyperparameters[k] = v
		}
	}
	if mw.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(mw.Metadata))
		for k, v := range mw.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}
