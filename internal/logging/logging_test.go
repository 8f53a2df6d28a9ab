package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("info message")
	logger.Warn("warn message", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "key=value")
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"silent", LevelSilent},
		{"bogus", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromString(tt.in))
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelSilent, LevelFromVerbosity(2, true, slog.LevelWarn))
	assert.Equal(t, slog.LevelError, LevelFromVerbosity(0, false, slog.LevelError))
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(1, false, slog.LevelWarn))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(3, false, slog.LevelWarn))
}
