package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// CreateLogger builds the base logger: JSON at info in PROD, text at debug otherwise.
func CreateLogger(env string) *slog.Logger {
	return newLogger(os.Stderr, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	if strings.EqualFold(env, "PROD") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
