package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestInitReplacesGlobal(t *testing.T) {
	require.NoError(t, Init(Config{Level: "debug", Encoding: "console"}))
	first := Get()
	require.NoError(t, Init(Config{Level: "warn"}))
	assert.NotSame(t, first, Get())
}

func TestWithContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), RunIDKey, "run-1")
	ctx = context.WithValue(ctx, OperatorKey, "convert")
	assert.NotNil(t, WithContext(ctx))
}

func TestFromContextAddsRunID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ContextWithRunID(context.Background(), "run-7")
	ctx = context.WithValue(ctx, ConnectorKey, "csv")

	FromContext(ctx, zap.New(core)).Info("started")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, map[string]interface{}{"run_id": "run-7", "connector": "csv"},
		logs.All()[0].ContextMap())
}

func TestFromContextWithoutValues(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, FromContext(context.Background(), base))
}
