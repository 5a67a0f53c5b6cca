package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJSONLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := New("loud", "text", &buf)

	assert.Contains(t, buf.String(), "invalid log level configured")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
