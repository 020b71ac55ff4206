package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger returns a JSON logger, or a colored tint logger in dev. Both are
// wrapped so trace/span IDs are attached when a span is on the context.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	var handler slog.Handler

	if env == "dev" {
		level = slog.LevelDebug
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(NewTraceHandler(handler))
}
