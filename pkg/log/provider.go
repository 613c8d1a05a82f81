// Global logger provider. Components obtain loggers through GetLogger and
// GetLoggerWithName; tests swap the provider with SetLoggerProvider to
// capture output.

package log

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rs/zerolog"

	tllerrors "github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

var (
	providerMu      sync.RWMutex
	currentProvider LoggerProvider = NewSlogProvider()
)

// SetLoggerProvider replaces the library-wide logger provider.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if p != nil {
		currentProvider = p
	}
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return currentProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
//
// Example:
//
//	logger := log.GetLoggerWithName("adaptation.iwan")
//	logger.Info("Scheduler created", log.MaxItersKey, 12000)
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return currentProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level on the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	currentProvider.SetLevel(level)
}

// UseZerologWarnings routes library warnings (see pkg/errors.Warn) through a
// zerolog logger writing to w. Warnings implementing
// zerolog.LogObjectMarshaler are emitted with their structured fields.
func UseZerologWarnings(w io.Writer) {
	zl := zerolog.New(w).With().Timestamp().Logger()
	tllerrors.SetZerologWarnFunc(func(warning error) {
		if m, ok := warning.(zerolog.LogObjectMarshaler); ok {
			zl.Warn().Object("warning", m).Msg(warning.Error())
			return
		}
		zl.Warn().Err(warning).Msg(warning.Error())
	})
}

// SlogProvider is the default LoggerProvider. It adapts the process-wide
// slog logger (see SetupLogger) to the Logger interface.
type SlogProvider struct {
	mu    sync.RWMutex
	level Level
}

// NewSlogProvider creates a provider that delegates to slog.Default().
func NewSlogProvider() *SlogProvider {
	return &SlogProvider{level: LevelInfo}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{provider: p, base: slog.Default()}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *SlogProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *SlogProvider) minLevel() Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	provider *SlogProvider
	base     *slog.Logger
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.log(LevelDebug, msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.log(LevelInfo, msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.log(LevelWarn, msg, fields...) }

// Error logs at error level. When the first field is an error value it is
// attached under the standard error attribute so ErrFmtHandler can extract
// its stack trace.
func (l *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			rest := fields[1:]
			args := make([]any, 0, len(rest)+2)
			args = append(args, ErrAttrKey, err)
			args = append(args, rest...)
			l.log(LevelError, msg, args...)
			return
		}
	}
	l.log(LevelError, msg, fields...)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{provider: l.provider, base: l.base.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	if level < l.provider.minLevel() {
		return false
	}
	return l.base.Enabled(ctx, slog.Level(level))
}

func (l *slogLogger) log(level Level, msg string, fields ...any) {
	if level < l.provider.minLevel() {
		return
	}
	l.base.Log(context.Background(), slog.Level(level), msg, fields...)
}
