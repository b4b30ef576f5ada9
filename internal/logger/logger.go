package logger

import (
	"context"
	"log/slog"
	"os"
)

var (
	globalLogger *slog.Logger
	verboseMode  bool
)

// Init initializes the global logger. In verbose mode everything down to
// debug level goes to stderr; otherwise only errors are emitted so the
// JSON output of sync/show stays clean for the widget frontend.
func Init(verbose bool) {
	verboseMode = verbose

	if verbose {
		globalLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		globalLogger = slog.New(&discardHandler{})
	}
	slog.SetDefault(globalLogger)
}

// discardHandler drops all records when verbose mode is disabled.
type discardHandler struct{}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return h }
func (h *discardHandler) WithGroup(_ string) slog.Handler               { return h }

func Debug(msg string, args ...any) {
	if verboseMode {
		globalLogger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if verboseMode {
		globalLogger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if verboseMode {
		globalLogger.Warn(msg, args...)
	}
}

// Error always logs, regardless of verbose mode.
func Error(msg string, args ...any) {
	if !verboseMode || globalLogger == nil {
		errLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		errLogger.Error(msg, args...)
		return
	}
	globalLogger.Error(msg, args...)
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	return verboseMode
}
