package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellpulse/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	t.Run("stdout output", func(t *testing.T) {
		ResetLoggerForTesting()
		t.Cleanup(ResetLoggerForTesting)

		logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "stdout"})
		require.NoError(t, err)
		require.NotNil(t, logger)
	})

	t.Run("file output creates log file", func(t *testing.T) {
		ResetLoggerForTesting()
		t.Cleanup(ResetLoggerForTesting)

		logPath := filepath.Join(t.TempDir(), "logs", "wellpulse.log")
		logger, err := InitializeLogger(config.LoggingConfig{
			Level:    "debug",
			Output:   "file",
			FilePath: logPath,
		})
		require.NoError(t, err)

		logger.Info("logger smoke test", slog.String("unit", "infrastructure"))
		require.NoError(t, CloseLogFile())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "logger smoke test")
	})

	t.Run("initialization happens once", func(t *testing.T) {
		ResetLoggerForTesting()
		t.Cleanup(ResetLoggerForTesting)

		first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "stdout"})
		require.NoError(t, err)
		second, err := InitializeLogger(config.LoggingConfig{Level: "error", Output: "stdout"})
		require.NoError(t, err)
		assert.Same(t, first, second)
	})
}

func TestTraceHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := &traceHandler{Handler: slog.NewJSONHandler(&buf, nil)}
	logger := slog.New(handler)

	ctx := WithTraceID(context.Background(), "trace-abc-123")
	logger.InfoContext(ctx, "with trace")
	logger.Info("without trace")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var withTrace map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &withTrace))
	assert.Equal(t, "trace-abc-123", withTrace["trace_id"])

	var withoutTrace map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &withoutTrace))
	_, present := withoutTrace["trace_id"]
	assert.False(t, present)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetTraceID(ctx))

	ctx = WithTraceID(ctx, "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))

	ensured := EnsureTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(ensured))

	// An existing trace ID survives EnsureTraceID.
	again := EnsureTraceID(ctx)
	assert.Equal(t, "abc", GetTraceID(again))
}
