package errors

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStackStartsAtCaller(t *testing.T) {
	err := New(ErrorTypeConfig, "bad")
	require.NotEmpty(t, err.Stack)
	assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestStackStartsAtCaller"), err.Stack[0].Function)

	wrapped := Wrap(err, ErrorTypeData, "outer")
	assert.Equal(t, err.Stack, wrapped.Stack)
	assert.Nil(t, Wrap(nil, ErrorTypeData, "nothing"))
}

func TestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	err := fmt.Errorf("setup: %w", New(ErrorTypeConfig, "unsupported conversion").
		WithDetail("target", "Int").
		WithDetail("source", "Duration"))
	log.Error("failed", Fields(err)...)
	log.Error("plain", Fields(io.EOF)...)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]interface{}{
		"error":        err.Error(),
		"error_type":   "config",
		"error_source": "Duration",
		"error_target": "Int",
	}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"error": "EOF"}, entries[1].ContextMap())
	assert.Nil(t, Fields(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Wrap(io.EOF, ErrorTypeTimeout, "slow")))
	assert.False(t, IsRetryable(io.EOF))
	assert.False(t, IsRetryable(New(ErrorTypeFile, "missing")))
}
