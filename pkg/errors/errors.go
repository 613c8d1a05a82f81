// Package errors provides the error handling and warning system used across
// the transfer-learning library. It wraps cockroachdb/errors so every
// constructor attaches a stack trace, and exposes structured error types that
// integrate with zerolog for machine-readable logging.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("TLL-Warning: %v\n", w)
	}
	// zerolog sink, set lazily to avoid a circular import with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler installs a library-wide warning handler. Use this to
// silence or redirect warnings such as ScheduleOverrunWarning.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop all warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through zerolog when available.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. The zerolog sink takes precedence when configured;
// otherwise the plain handler runs.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// ScheduleOverrunWarning is emitted when a counter-driven schedule is stepped
// past its nominal horizon. Running past the horizon is documented behavior,
// not an error; the warning exists so long training runs surface it once.
type ScheduleOverrunWarning struct {
	Schedule     string
	MaxIters     int
	CurrentIters int
}

func (w *ScheduleOverrunWarning) Error() string {
	return fmt.Sprintf("%s stepped past its horizon: current_iters=%d, max_iters=%d. The schedule keeps growing toward its asymptote; stop stepping or enable clamping if this is unintended.",
		w.Schedule, w.CurrentIters, w.MaxIters)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *ScheduleOverrunWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("schedule", w.Schedule).
		Int("max_iters", w.MaxIters).
		Int("current_iters", w.CurrentIters).
		Str("type", "ScheduleOverrunWarning")
}

// NewScheduleOverrunWarning creates a new ScheduleOverrunWarning.
func NewScheduleOverrunWarning(schedule string, maxIters, currentIters int) *ScheduleOverrunWarning {
	return &ScheduleOverrunWarning{Schedule: schedule, MaxIters: maxIters, CurrentIters: currentIters}
}

// UndefinedMetricWarning is emitted when an evaluation metric is ill-defined
// for the given inputs, e.g. an accuracy over an empty prediction set.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // value returned under this condition
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// DimensionError reports a mismatch between an expected and an actual size
// along one axis of the input. Axis 0 is rows (samples), axis 1 is columns
// (features/channels).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("tll: %s: dimension mismatch on axis %d (%s): expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports a constructor or setter argument that failed
// validation, such as a non-positive schedule horizon or a dropout rate
// outside [0, 1).
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tll: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable for the operation,
// e.g. an empty batch passed to a forward pass.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("tll: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// NotReadyError is returned when a component is used before the state it
// needs exists, e.g. predicting with a classifier whose weights were never
// loaded or initialized.
type NotReadyError struct {
	Component string
	Op        string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("tll: this %s instance is not ready for %s. Initialize or load weights first", e.Component, e.Op)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotReadyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("component", e.Component).
		Str("operation", e.Op).
		Str("type", "NotReadyError")
}

// NewNotReadyError creates a NotReadyError with a stack trace attached.
func NewNotReadyError(component, op string) error {
	err := &NotReadyError{Component: component, Op: op}
	return errors.WithStack(err)
}

// ModelError is a general error raised by a model component. Kind names the
// failure class (e.g. "forward failed", "serialization failed").
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tll: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("tll: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("kind", e.Kind).
		Str("type", "ModelError")
	if e.Err != nil {
		event.AnErr("cause", e.Err)
	}
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError reports NaN or Inf values detected during a
// numeric operation.
type NumericalInstabilityError struct {
	Operation string    // operation that produced the values
	Values    []float64 // offending values (truncated for display)
	Iteration int       // iteration at which the instability appeared
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("tll: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("iteration", e.Iteration).
		Int("value_count", len(e.Values)).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a
// stack trace attached.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to an error.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives an empty batch.
	ErrEmptyData = New("empty data")

	// ErrNilModule is returned when a required sub-module is nil.
	ErrNilModule = New("nil module")
)
