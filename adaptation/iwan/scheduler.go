package iwan

import (
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// defaultAlpha is the schedule steepness used when WithAlpha is not given.
const defaultAlpha = 1.0

// TradeOffScheduler produces the scalar weight that scales the adversarial
// loss term during training. The weight follows a sigmoid ramp from exactly 0
// at iteration 0 toward the asymptote mu, reaching 2*mu/(1+e^-alpha) - mu at
// the nominal horizon maxIters.
//
// The schedule keeps growing past maxIters; overrunning the horizon is legal
// and merely reported once through the warning system. Opt into WithClamp to
// freeze the value at the horizon instead.
type TradeOffScheduler struct {
	maxIters     int
	mu           float64
	alpha        float64
	clamp        bool
	currentIters int
	warned       bool
}

// SchedulerOption configures a TradeOffScheduler under construction.
type SchedulerOption func(*TradeOffScheduler)

// WithAlpha sets the schedule steepness. Values must be positive; larger
// values reach the asymptote faster.
func WithAlpha(alpha float64) SchedulerOption {
	return func(s *TradeOffScheduler) {
		s.alpha = alpha
	}
}

// WithClamp freezes the schedule at its horizon value once currentIters
// reaches maxIters, instead of the default unbounded growth.
func WithClamp() SchedulerOption {
	return func(s *TradeOffScheduler) {
		s.clamp = true
	}
}

// NewTradeOffScheduler creates a scheduler ramping toward mu over maxIters
// iterations.
func NewTradeOffScheduler(maxIters int, mu float64, opts ...SchedulerOption) (*TradeOffScheduler, error) {
	if maxIters <= 0 {
		return nil, errors.NewValidationError("maxIters", "must be positive", maxIters)
	}

	s := &TradeOffScheduler{
		maxIters: maxIters,
		mu:       mu,
		alpha:    defaultAlpha,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.alpha <= 0 {
		return nil, errors.NewValidationError("alpha", "must be positive", s.alpha)
	}
	return s, nil
}

// GetTradeOff returns the adversarial loss weight at the current iteration:
// 2*mu / (1 + exp(-alpha*currentIters/maxIters)) - mu.
func (s *TradeOffScheduler) GetTradeOff() float64 {
	return s.TradeOffAt(s.currentIters)
}

// TradeOffAt evaluates the schedule at an arbitrary iteration without
// touching the counter. The value is a pure function of iter and the
// constructor parameters, so the whole curve can be sampled up front.
func (s *TradeOffScheduler) TradeOffAt(iter int) float64 {
	cur := float64(iter)
	if s.clamp {
		cur = errors.ClipValue(cur, 0, float64(s.maxIters))
	}
	progress := cur / float64(s.maxIters)
	return 2.0*s.mu/(1.0+errors.StabilizeExp(-s.alpha*progress)) - s.mu
}

// Step records the completion of one training iteration, incrementing the
// counter by exactly 1. The first step past maxIters emits a one-time
// ScheduleOverrunWarning; the schedule itself is unaffected.
//
// Not safe for concurrent use. The training driver calls Step exactly once
// per iteration from a single goroutine.
func (s *TradeOffScheduler) Step() {
	s.currentIters++
	if s.currentIters > s.maxIters && !s.warned {
		s.warned = true
		errors.Warn(errors.NewScheduleOverrunWarning("trade_off", s.maxIters, s.currentIters))
	}
}

// CurrentIters returns the number of completed Step calls.
func (s *TradeOffScheduler) CurrentIters() int {
	return s.currentIters
}

// MaxIters returns the nominal schedule length.
func (s *TradeOffScheduler) MaxIters() int {
	return s.maxIters
}

// Mu returns the asymptotic maximum of the schedule.
func (s *TradeOffScheduler) Mu() float64 {
	return s.mu
}

// Alpha returns the schedule steepness.
func (s *TradeOffScheduler) Alpha() float64 {
	return s.alpha
}
