package visualize

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// History collects named scalar series (loss, accuracy, trade-off) over
// training iterations for later plotting. Not safe for concurrent use; the
// training driver appends from its own goroutine.
type History struct {
	series map[string]plotter.XYs
	order  []string
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{series: make(map[string]plotter.XYs)}
}

// Append records value for the named series at the given iteration.
// Non-finite values are rejected so a NaN loss cannot silently poison the
// curves.
func (h *History) Append(iteration int, name string, value float64) error {
	if name == "" {
		return errors.NewValueError("History.Append", "series name is empty")
	}
	if err := errors.CheckScalar("History.Append", value, iteration); err != nil {
		return err
	}

	if _, ok := h.series[name]; !ok {
		h.order = append(h.order, name)
	}
	h.series[name] = append(h.series[name], plotter.XY{X: float64(iteration), Y: value})
	return nil
}

// Names returns the series names in first-appearance order.
func (h *History) Names() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Series returns a copy of the named series and whether it exists.
func (h *History) Series(name string) (plotter.XYs, bool) {
	xys, ok := h.series[name]
	if !ok {
		return nil, false
	}
	out := make(plotter.XYs, len(xys))
	copy(out, xys)
	return out, true
}

// Len returns the number of samples in the named series.
func (h *History) Len(name string) int {
	return len(h.series[name])
}

// SaveTrainingCurves renders every collected series into one line plot at
// path; the extension picks the format.
func SaveTrainingCurves(h *History, path string) error {
	if h == nil {
		return errors.NewValueError("SaveTrainingCurves", "nil history")
	}
	if len(h.order) == 0 {
		return errors.NewValueError("SaveTrainingCurves", "history has no series")
	}

	renderErr := errors.SafeExecute("SaveTrainingCurves", func() error {
		p := plot.New()
		p.Title.Text = "Training curves"
		p.X.Label.Text = "iteration"
		p.Add(plotter.NewGrid())

		vs := make([]interface{}, 0, 2*len(h.order))
		for _, name := range h.order {
			vs = append(vs, name, h.series[name])
		}
		if err := plotutil.AddLines(p, vs...); err != nil {
			return err
		}

		return p.Save(6*vg.Inch, 4*vg.Inch, path)
	})
	if renderErr != nil {
		return renderErr
	}

	logger := log.GetLoggerWithName("visualize")
	logger.Debug("Training curves saved",
		"path", path,
		"series", len(h.order))
	return nil
}
