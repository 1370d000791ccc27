package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDropsTimeAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug)
	logger.Debug("[PARSER] done", "tokens", 12)

	assert.Equal(t, "msg=\"[PARSER] done\" tokens=12\n", buf.String())
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("shown")

	assert.Equal(t, "msg=shown\n", buf.String())
}

func TestFromEnv(t *testing.T) {
	t.Setenv(DebugEnv, "")
	t.Setenv("COBOLSCOPE_DEBUG_TEST", "")
	assert.False(t, FromEnv("COBOLSCOPE_DEBUG_TEST").Enabled(context.Background(), slog.LevelDebug))

	t.Setenv("COBOLSCOPE_DEBUG_TEST", "1")
	assert.True(t, FromEnv("COBOLSCOPE_DEBUG_TEST").Enabled(context.Background(), slog.LevelDebug))

	t.Setenv("COBOLSCOPE_DEBUG_TEST", "")
	t.Setenv(DebugEnv, "yes")
	assert.True(t, FromEnv("COBOLSCOPE_DEBUG_TEST").Enabled(context.Background(), slog.LevelDebug))
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
