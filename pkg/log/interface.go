// Package log provides a structured logging interface for transfer-learning
// operations.
//
// This package defines a minimal, slog-compatible logging interface that
// allows for flexible implementation switching while providing ML-specific
// structured logging capabilities. The interface is designed to integrate
// seamlessly with Go's standard log/slog package and popular logging
// libraries like zerolog, logrus, and zap.
//
// Key features:
//   - slog-compatible interface for future-proofing
//   - ML-specific structured attributes (operations, data shapes, schedules)
//   - Context-aware logging with field chaining
//   - Test-friendly with configurable output destinations
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "ImageClassifier",
//	    log.ComponentKey, "adaptation.iwan",
//	)
//	logger.Info("Forward pass completed",
//	    log.OperationKey, log.OperationForward,
//	    log.SamplesKey, 32,
//	    log.FeaturesKey, 256,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The interface is implementation-agnostic, enabling switching between
// logging backends while maintaining a consistent API. It supports method
// chaining through With, allowing creation of contextual loggers with
// pre-populated fields.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Debug logs carry detailed diagnostic information and are usually
	// disabled in production environments.
	//
	// Example:
	//   logger.Debug("Pooling feature maps",
	//       log.ChannelsKey, 512,
	//       log.SamplesKey, 32,
	//   )
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	// Info logs record general operational information about the
	// execution flow.
	//
	// Example:
	//   logger.Info("Evaluation completed",
	//       log.AccuracyKey, 0.95,
	//       log.DurationMsKey, 5432,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// Warning logs indicate potentially problematic situations that do not
	// prevent the operation from continuing.
	//
	// Example:
	//   logger.Warn("Schedule stepped past horizon",
	//       log.IterationKey, 12001,
	//       log.MaxItersKey, 12000,
	//   )
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If an error value is provided as a field, stack trace information
	// may be automatically included by the handler.
	//
	// Example:
	//   logger.Error("Forward pass failed",
	//       "error", err,
	//       log.OperationKey, log.OperationForward,
	//       log.SamplesKey, 32,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	// Contextual loggers automatically include the common fields in all
	// subsequent log messages.
	//
	// Example:
	//   contextLogger := logger.With(
	//       log.ModelNameKey, "ImageClassifierHead",
	//       log.ComponentKey, "adaptation.iwan",
	//   )
	//   contextLogger.Info("Initialized")  // includes model info
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given
	// level. Use it to avoid expensive attribute construction for records
	// that would be dropped.
	//
	// Example:
	//   if logger.Enabled(ctx, LevelDebug) {
	//       logger.Debug("Parameter norms", "norms", parameterNorms(model))
	//   }
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
// It allows dependency injection and testing with different logger
// implementations.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific name/component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
