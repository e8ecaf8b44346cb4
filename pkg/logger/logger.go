// Package logger provides structured logging for colconv
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	mu           sync.Mutex
)

type contextKey string

const (
	// RunIDKey is the context key for the pipeline run ID
	RunIDKey contextKey = "run_id"
	// OperatorKey is the context key for the operator name
	OperatorKey contextKey = "operator"
	// ConnectorKey is the context key for connector name
	ConnectorKey contextKey = "connector"
)

// contextFields lists the context keys copied onto loggers, in output order.
var contextFields = []contextKey{RunIDKey, OperatorKey, ConnectorKey}

// Config represents logger configuration
type Config struct {
	// Level is debug, info, warn or error. Empty means info.
	Level       string
	Development bool
	// Encoding is json or console. Empty means json.
	Encoding string
	// OutputPaths defaults to stderr so stdout stays free for output data.
	OutputPaths []string
}

// Init replaces the global logger. The CLI calls it once flags are parsed;
// code that logged before that used the default from Get.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	globalLogger = l
	mu.Unlock()
	return nil
}

// New builds a zap logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.Development || encoding == "console" {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.Development {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	l, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Get returns the global logger, creating an info level JSON logger on
// first use.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		l, err := New(Config{})
		if err != nil {
			l = zap.NewNop()
		}
		globalLogger = l
	}
	return globalLogger
}

// ContextWithRunID stores a pipeline run ID for FromContext.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// FromContext returns base, or the global logger when base is nil, with
// the run, operator and connector values found in ctx.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = Get()
	}
	var fields []zap.Field
	for _, key := range contextFields {
		if v, ok := ctx.Value(key).(string); ok {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// WithContext returns the global logger with the values found in ctx.
func WithContext(ctx context.Context) *zap.Logger {
	return FromContext(ctx, nil)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
