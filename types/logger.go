package types

// Logger is the structured logger used by cqltask.
//
// Messages carry alternating key/value pairs, matching log/slog and
// zap.SugaredLogger conventions:
//
//	logger.Warn("server warning", "execution_id", id, "warning", w)
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
