package metrics

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// DriftState classifies the output of a DriftMonitor observation.
type DriftState int

const (
	// DriftNone means the error rate is consistent with the best window seen.
	DriftNone DriftState = iota
	// DriftWarning means the error rate has left the warning band.
	DriftWarning
	// DriftDetected means the error rate crossed the drift threshold and the
	// monitor reset its window.
	DriftDetected
)

// String returns the state name.
func (s DriftState) String() string {
	switch s {
	case DriftNone:
		return "none"
	case DriftWarning:
		return "warning"
	case DriftDetected:
		return "drift"
	default:
		return "unknown"
	}
}

// DriftMonitor watches the running error rate of a classifier over a stream
// of predictions and flags distribution shift with the Drift Detection Method
// of Gama et al. (2004). In an adaptation setting it observes target-domain
// predictions and signals when the adapted model has gone stale.
//
// With error rate p over n samples and s = sqrt(p*(1-p)/n), the monitor
// tracks the minimum of p+s seen so far and raises a warning when
// p+s > pMin + warningSigma*sMin, and a drift when
// p+s > pMin + driftSigma*sMin. A detected drift resets the window, so the
// monitor re-warms on the shifted distribution.
//
// Safe for concurrent use.
type DriftMonitor struct {
	minSamples   int
	warningSigma float64
	driftSigma   float64

	mu        sync.Mutex
	samples   int
	misses    int
	errorRate float64
	stdDev    float64
	pMin      float64
	sMin      float64
	state     DriftState

	logger log.Logger
}

// DriftOption configures a DriftMonitor.
type DriftOption func(*DriftMonitor)

// WithMinSamples sets the number of observations before detection starts.
// Default 30.
func WithMinSamples(n int) DriftOption {
	return func(d *DriftMonitor) { d.minSamples = n }
}

// WithWarningSigma sets the warning threshold in units of the reference
// standard deviation. Default 2.
func WithWarningSigma(k float64) DriftOption {
	return func(d *DriftMonitor) { d.warningSigma = k }
}

// WithDriftSigma sets the drift threshold in units of the reference standard
// deviation. Default 3.
func WithDriftSigma(k float64) DriftOption {
	return func(d *DriftMonitor) { d.driftSigma = k }
}

// NewDriftMonitor creates a monitor with the standard DDM thresholds.
func NewDriftMonitor(opts ...DriftOption) (*DriftMonitor, error) {
	d := &DriftMonitor{
		minSamples:   30,
		warningSigma: 2.0,
		driftSigma:   3.0,
		pMin:         math.Inf(1),
		sMin:         math.Inf(1),
		logger:       log.GetLoggerWithName("metrics.drift"),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.minSamples <= 0 {
		return nil, errors.NewValidationError("minSamples", "must be positive", d.minSamples)
	}
	if d.warningSigma <= 0 {
		return nil, errors.NewValidationError("warningSigma", "must be positive", d.warningSigma)
	}
	if d.driftSigma < d.warningSigma {
		return nil, errors.NewValidationError("driftSigma", "must be at least warningSigma", d.driftSigma)
	}
	return d, nil
}

// Observe records one prediction outcome and returns the resulting state.
// A DriftDetected return resets the window; the next observations warm the
// monitor up again on the shifted distribution.
func (d *DriftMonitor) Observe(correct bool) DriftState {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.samples++
	if !correct {
		d.misses++
	}

	if d.samples < d.minSamples {
		return DriftNone
	}

	d.errorRate = float64(d.misses) / float64(d.samples)
	d.stdDev = math.Sqrt(d.errorRate * (1.0 - d.errorRate) / float64(d.samples))

	level := d.errorRate + d.stdDev
	if level < d.pMin+d.sMin {
		d.pMin = d.errorRate
		d.sMin = d.stdDev
	}

	if level > d.pMin+d.driftSigma*d.sMin {
		d.logger.Debug("Drift detected",
			log.SamplesKey, d.samples,
			log.ErrorRateKey, d.errorRate)
		d.resetLocked()
		return DriftDetected
	}

	if level > d.pMin+d.warningSigma*d.sMin {
		d.state = DriftWarning
	} else {
		d.state = DriftNone
	}
	return d.state
}

// ObserveBatch feeds every row of a logits/labels pair through Observe in row
// order and returns the most severe state seen in the batch.
func (d *DriftMonitor) ObserveBatch(logits, labels mat.Matrix) (DriftState, error) {
	rows, err := checkLabels("DriftMonitor.ObserveBatch", logits, labels)
	if err != nil {
		return DriftNone, err
	}
	_, cols := logits.Dims()

	worst := DriftNone
	for i := 0; i < rows; i++ {
		correct := argmaxRow(logits, i, cols) == int(labels.At(i, 0))
		if s := d.Observe(correct); s > worst {
			worst = s
		}
	}
	return worst, nil
}

// State returns the state after the last observation. A drift reset reports
// DriftNone, the fresh window has no history yet.
func (d *DriftMonitor) State() DriftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ErrorRate returns the error rate of the current window, 0 during warmup.
func (d *DriftMonitor) ErrorRate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errorRate
}

// Samples returns the observation count of the current window.
func (d *DriftMonitor) Samples() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.samples
}

// Reset discards all window state.
func (d *DriftMonitor) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *DriftMonitor) resetLocked() {
	d.samples = 0
	d.misses = 0
	d.errorRate = 0
	d.stdDev = 0
	d.pMin = math.Inf(1)
	d.sMin = math.Inf(1)
	d.state = DriftNone
}
