package otel

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

var levelPriority = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// Logger トレースIDを埋め込むJSON構造化ロガー
type Logger struct {
	tracer trace.Tracer
	mu     sync.Mutex
	out    io.Writer
	min    int
}

// NewLogger 新しいLoggerを作成。出力レベルは環境変数LOG_LEVELで制御する（デフォルトINFO）
func NewLogger(tracer trace.Tracer) *Logger {
	return NewLoggerWithOutput(tracer, os.Stdout, levelFromEnv())
}

// NewLoggerWithOutput 出力先と最小レベルを指定してLoggerを作成
func NewLoggerWithOutput(tracer trace.Tracer, out io.Writer, min LogLevel) *Logger {
	priority, ok := levelPriority[min]
	if !ok {
		priority = levelPriority[LogLevelInfo]
	}
	return &Logger{
		tracer: tracer,
		out:    out,
		min:    priority,
	}
}

func levelFromEnv() LogLevel {
	level := LogLevel(os.Getenv("LOG_LEVEL"))
	if _, ok := levelPriority[level]; ok {
		return level
	}
	return LogLevelInfo
}

// LogEntry ログエントリ
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Log ログを出力。アクティブなスパンがあればトレースIDとスパンIDを付与する
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	if levelPriority[level] < l.min {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}

	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if spanCtx.IsValid() {
		entry.TraceID = spanCtx.TraceID().String()
		entry.SpanID = spanCtx.SpanID().String()
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(jsonData, '\n'))
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力し、アクティブなスパンにもエラーを記録する
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
		trace.SpanFromContext(ctx).RecordError(err)
	}
	l.Log(ctx, LogLevelError, message, fields)
}
