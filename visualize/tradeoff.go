// Package visualize renders training diagnostics (trade-off schedules, loss
// and accuracy curves) to image files with gonum/plot.
package visualize

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/JacobARose/Transfer-Learning-Library/adaptation/iwan"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// TradeOffCurve samples the scheduler's curve at iterations 0..iters and
// returns the points for plotting. The scheduler's counter is not touched.
func TradeOffCurve(s *iwan.TradeOffScheduler, iters int) (plotter.XYs, error) {
	if s == nil {
		return nil, errors.NewValueError("TradeOffCurve", "nil scheduler")
	}
	if iters <= 0 {
		return nil, errors.NewValidationError("iters", "must be positive", iters)
	}

	xys := make(plotter.XYs, iters+1)
	for i := 0; i <= iters; i++ {
		v := s.TradeOffAt(i)
		if err := errors.CheckScalar("TradeOffCurve", v, i); err != nil {
			return nil, err
		}
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	return xys, nil
}

// SaveTradeOffCurve renders the schedule over iterations 0..iters to an image
// file; the extension picks the format (".png" for the usual choice).
func SaveTradeOffCurve(s *iwan.TradeOffScheduler, iters int, path string) error {
	xys, err := TradeOffCurve(s, iters)
	if err != nil {
		return err
	}

	// gonum/plot panics on degenerate draw input; keep that at this
	// boundary as an error.
	renderErr := errors.SafeExecute("SaveTradeOffCurve", func() error {
		p := plot.New()
		p.Title.Text = "Adversarial trade-off schedule"
		p.X.Label.Text = "iteration"
		p.Y.Label.Text = "trade-off"
		p.Add(plotter.NewGrid())

		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		p.Add(line)
		p.Legend.Add("trade_off", line)

		return p.Save(6*vg.Inch, 4*vg.Inch, path)
	})
	if renderErr != nil {
		return renderErr
	}

	logger := log.GetLoggerWithName("visualize")
	logger.Debug("Trade-off curve saved",
		"path", path,
		log.MaxItersKey, s.MaxIters(),
		"samples", iters+1)
	return nil
}
