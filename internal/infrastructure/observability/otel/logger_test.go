package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newBufferLogger(min LogLevel) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewLoggerWithOutput(tracer, buf, min), buf
}

func decodeLogLine(t *testing.T, line string) LogEntry {
	t.Helper()
	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := NewLogger(tracer)

	assert.NotNil(t, logger)
}

func TestLogger_Log(t *testing.T) {
	t.Run("正常系: JSON1行とタイムスタンプが出力される", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelDebug)

		logger.Info(context.Background(), "balance granted", map[string]interface{}{
			"user_id": "user123",
			"amount":  3,
		})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		entry := decodeLogLine(t, lines[0])
		assert.Equal(t, "INFO", entry.Level)
		assert.Equal(t, "balance granted", entry.Message)
		assert.Equal(t, "user123", entry.Fields["user_id"])

		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
	})

	t.Run("正常系: 最小レベル未満のログは抑制される", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelWarn)

		logger.Debug(context.Background(), "noisy detail", nil)
		logger.Info(context.Background(), "routine", nil)
		logger.Warn(context.Background(), "something odd", nil)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)
		assert.Equal(t, "WARN", decodeLogLine(t, lines[0]).Level)
	})

	t.Run("正常系: アクティブなスパンのトレースIDが付与される", func(t *testing.T) {
		provider := sdktrace.NewTracerProvider()
		defer func() { _ = provider.Shutdown(context.Background()) }()
		tracer := provider.Tracer("test")

		buf := &bytes.Buffer{}
		logger := NewLoggerWithOutput(tracer, buf, LogLevelInfo)

		ctx, span := tracer.Start(context.Background(), "test-span")
		logger.Info(ctx, "inside span", nil)
		span.End()

		entry := decodeLogLine(t, strings.TrimSpace(buf.String()))
		assert.Equal(t, span.SpanContext().TraceID().String(), entry.TraceID)
		assert.Equal(t, span.SpanContext().SpanID().String(), entry.SpanID)
	})

	t.Run("正常系: スパンなしではトレースIDを付与しない", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)

		logger.Info(context.Background(), "no span", nil)

		entry := decodeLogLine(t, strings.TrimSpace(buf.String()))
		assert.Empty(t, entry.TraceID)
		assert.Empty(t, entry.SpanID)
	})
}

func TestLogger_Error(t *testing.T) {
	t.Run("正常系: エラー内容がfieldsに入る", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)

		logger.Error(context.Background(), "draw failed", errors.New("db down"), map[string]interface{}{
			"user_id": "user123",
		})

		entry := decodeLogLine(t, strings.TrimSpace(buf.String()))
		assert.Equal(t, "ERROR", entry.Level)
		assert.Equal(t, "db down", entry.Fields["error"])
		assert.Equal(t, "user123", entry.Fields["user_id"])
	})

	t.Run("正常系: fieldsがnilでもエラー内容が入る", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)

		logger.Error(context.Background(), "draw failed", errors.New("db down"), nil)

		entry := decodeLogLine(t, strings.TrimSpace(buf.String()))
		assert.Equal(t, "db down", entry.Fields["error"])
	})

	t.Run("正常系: errがnilでもpanicしない", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)

		logger.Error(context.Background(), "failure without cause", nil, nil)

		entry := decodeLogLine(t, strings.TrimSpace(buf.String()))
		assert.Equal(t, "ERROR", entry.Level)
		assert.NotContains(t, entry.Fields, "error")
	})
}

func TestLogger_LevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		expected LogLevel
	}{
		{name: "正常系: DEBUG指定", env: "DEBUG", expected: LogLevelDebug},
		{name: "正常系: ERROR指定", env: "ERROR", expected: LogLevelError},
		{name: "正常系: 未設定はINFO", env: "", expected: LogLevelInfo},
		{name: "異常系: 不正値はINFO", env: "VERBOSE", expected: LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.expected, levelFromEnv())
		})
	}
}
