// Package cli implements the jte command-line interface.
//
// Commands open a JSON tree document, print it, validate it, export it,
// watch it for changes, or run editing commands against it. Every command
// supports --verbose (-v) for debug logging and --log-file to send log
// output to a file instead of stderr. The logger and the loaded
// configuration travel through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pstuifzand/jsontree/internal/config"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	configKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func withConfig(ctx context.Context, c *config.Config) context.Context {
	return context.WithValue(ctx, configKey, c)
}

// configFromContext retrieves the configuration from ctx. Without one the
// defaults apply.
func configFromContext(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey).(*config.Config); ok {
		return c
	}
	return &config.Config{}
}
