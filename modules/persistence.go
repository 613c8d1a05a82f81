package modules

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/JacobARose/Transfer-Learning-Library/nn"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// tensorState is the serialized form of one named parameter or buffer.
type tensorState struct {
	Rows int
	Cols int
	Data []float64
}

// moduleState is the gob snapshot of a module: every learnable parameter and
// every buffer, keyed by hierarchical name.
type moduleState struct {
	Tensors map[string]tensorState
}

// collectState gathers the parameters and buffers a snapshot covers.
func collectState(m nn.Module) []*nn.Parameter {
	params := m.Parameters()
	state := make([]*nn.Parameter, 0, len(params))
	state = append(state, params...)
	state = append(state, nn.BuffersOf(m)...)
	return state
}

func snapshotModule(op string, m nn.Module) (*moduleState, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrNilModule, op)
	}
	tensors := collectState(m)
	if len(tensors) == 0 {
		return nil, errors.NewNotReadyError("module", op)
	}

	state := &moduleState{Tensors: make(map[string]tensorState, len(tensors))}
	for _, p := range tensors {
		if _, exists := state.Tensors[p.Name]; exists {
			return nil, errors.NewModelError(op, "snapshot", errors.Newf("duplicate parameter name %q", p.Name))
		}
		rows, cols := p.Value.Dims()
		data := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			data = append(data, p.Value.RawRowView(i)...)
		}
		state.Tensors[p.Name] = tensorState{Rows: rows, Cols: cols, Data: data}
	}
	return state, nil
}

func applyState(op string, m nn.Module, state *moduleState) error {
	if m == nil {
		return errors.Wrap(errors.ErrNilModule, op)
	}
	tensors := collectState(m)
	if len(tensors) == 0 {
		return errors.NewNotReadyError("module", op)
	}
	if len(state.Tensors) != len(tensors) {
		return errors.NewModelError(op, "state",
			errors.Newf("saved state has %d tensors, module has %d", len(state.Tensors), len(tensors)))
	}

	for _, p := range tensors {
		saved, ok := state.Tensors[p.Name]
		if !ok {
			return errors.NewModelError(op, "state", errors.Newf("saved state is missing parameter %q", p.Name))
		}
		rows, cols := p.Value.Dims()
		if saved.Rows != rows {
			return errors.Wrapf(errors.NewDimensionError(op, rows, saved.Rows, 0), "parameter %s", p.Name)
		}
		if saved.Cols != cols {
			return errors.Wrapf(errors.NewDimensionError(op, cols, saved.Cols, 1), "parameter %s", p.Name)
		}
		if len(saved.Data) != rows*cols {
			return errors.NewModelError(op, "state",
				errors.Newf("parameter %q: data length %d does not match shape (%d, %d)",
					p.Name, len(saved.Data), saved.Rows, saved.Cols))
		}
		for i := 0; i < rows; i++ {
			copy(p.Value.RawRowView(i), saved.Data[i*cols:(i+1)*cols])
		}
	}
	return nil
}

// SaveModel writes the module's parameters and buffers to a gob file.
//
// Example:
//
//	head, _ := iwan.NewImageClassifierHead(256, 31)
//	// ... training ...
//	err := modules.SaveModel(head, "head.gob")
func SaveModel(m nn.Module, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewModelError("SaveModel", "io", err)
	}
	defer file.Close()

	if err := SaveModelToWriter(m, file); err != nil {
		return err
	}

	logger := log.GetLoggerWithName("modules.persistence")
	logger.Debug("Model state saved",
		log.OperationKey, log.OperationSave,
		"path", filename)
	return nil
}

// LoadModel restores the module's parameters and buffers from a gob file
// written by SaveModel. The module must have the same architecture: every
// saved tensor is matched to a current one by name, and shapes must agree.
//
// Example:
//
//	head, _ := iwan.NewImageClassifierHead(256, 31)
//	err := modules.LoadModel(head, "head.gob")
func LoadModel(m nn.Module, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.NewModelError("LoadModel", "io", err)
	}
	defer file.Close()

	if err := LoadModelFromReader(m, file); err != nil {
		return err
	}

	logger := log.GetLoggerWithName("modules.persistence")
	logger.Debug("Model state loaded",
		log.OperationKey, log.OperationLoad,
		"path", filename)
	return nil
}

// SaveModelToWriter writes the module's state to w as gob.
func SaveModelToWriter(m nn.Module, w io.Writer) error {
	state, err := snapshotModule("SaveModel", m)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return errors.NewModelError("SaveModel", "encode", err)
	}
	return nil
}

// LoadModelFromReader restores the module's state from gob read from r.
func LoadModelFromReader(m nn.Module, r io.Reader) error {
	var state moduleState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return errors.NewModelError("LoadModel", "decode", err)
	}
	return applyState("LoadModel", m, &state)
}
