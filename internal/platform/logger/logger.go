package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Handlers attach
// request-scoped attributes themselves; this only fixes the sink and level.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
