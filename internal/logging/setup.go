package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects log destinations and levels.
type Config struct {
	// ConsoleLevel is the minimum level written to the console writer.
	ConsoleLevel string `yaml:"console_level" toml:"console_level"`

	// Format is "text" (default) or "json".
	Format string `yaml:"format" toml:"format"`

	// FileOutput is an optional log file path, appended to.
	FileOutput string `yaml:"file_output" toml:"file_output"`

	// FileLevel is the minimum level written to FileOutput.
	FileLevel string `yaml:"file_level" toml:"file_level"`
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog logger writing to console and, when configured, a file.
//
// Parameters:
//   - cfg: Logging configuration
//   - console: Console destination (typically os.Stderr)
//
// Returns:
//   - *slog.Logger: The configured logger
//   - func() error: Closes the log file; a no-op when no file is configured
//   - error: Error opening the log file
func New(cfg Config, console io.Writer) (*slog.Logger, func() error, error) {
	handlers := []slog.Handler{
		newHandler(cfg.Format, console, &slog.HandlerOptions{Level: ParseLevel(cfg.ConsoleLevel)}),
	}
	closeFn := func() error { return nil }

	if cfg.FileOutput != "" {
		f, err := os.OpenFile(cfg.FileOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closeFn = f.Close

		handlers = append(handlers, newHandler(cfg.Format, f, &slog.HandlerOptions{
			Level:     ParseLevel(cfg.FileLevel),
			AddSource: true,
		}))
	}

	return slog.New(NewMultiHandler(handlers...)), closeFn, nil
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}
