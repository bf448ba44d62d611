package logging

import (
	"log/slog"

	"github.com/arloliu/cqltask/types"
)

// SlogLogger adapts a *slog.Logger to types.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// Compile-time assertion that SlogLogger implements types.Logger.
var _ types.Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps logger. A nil logger wraps slog.Default().
//
// Parameters:
//   - logger: The slog logger to write to
//
// Returns:
//   - *SlogLogger: A types.Logger backed by slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogLogger{logger: logger}
}

// Debug logs at debug level.
func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

// Info logs at info level.
func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

// Error logs at error level.
func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}
