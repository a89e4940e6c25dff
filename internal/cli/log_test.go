package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/pstuifzand/jsontree/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, loggerFromContext(ctx), "falls back to the default logger")

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx = withLogger(ctx, custom)
	assert.Same(t, custom, loggerFromContext(ctx))

	loggerFromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestConfigFromContext(t *testing.T) {
	ctx := context.Background()
	cfg := configFromContext(ctx)
	assert.NotNil(t, cfg)
	assert.Equal(t, "substring", cfg.SearchMode())

	custom := &config.Config{}
	custom.Set(config.SettingSearch, "fuzzy")
	assert.Same(t, custom, configFromContext(withConfig(ctx, custom)))
}
