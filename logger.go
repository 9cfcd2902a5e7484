package studio

import (
	"log/slog"

	"github.com/gogpu/studio/internal/logging"
)

// SetLogger configures the logger for studio and all its sub-packages.
// By default, studio produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to disable logging (restore default silent
// behavior).
//
// Log levels used by studio:
//   - [slog.LevelDebug]: history capture and replay, skipped elements
//   - [slog.LevelInfo]: export batch start and finish
//   - [slog.LevelWarn]: failed ratios, stale ids, unreadable images
//
// Example:
//
//	studio.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by studio.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
