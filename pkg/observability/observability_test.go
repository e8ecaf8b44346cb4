package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(DefaultTracingConfig())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitStdout(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Output = &buf

	shutdown, err := Init(cfg)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "pipeline.run")
	span.SetAttribute("rows", 3)
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "pipeline.run")
}

func TestInitUnknownExporter(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.ExporterType = "jaeger"

	_, err := Init(cfg)
	assert.Error(t, err)
}

func TestSpanAttributesAndStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	ctx, parent := StartSpan(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")
	child.SetAttribute("operator", "amount (as Int)")
	child.SetAttribute("failed", int64(2))
	child.SetAttribute("ok", true)
	child.SetAttribute("other", []string{"x"})
	child.RecordError(errors.New("boom"))
	child.End()
	parent.RecordError(nil)
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "child", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Attributes(), 4)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
}
