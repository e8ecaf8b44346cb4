// Package observability provides OpenTelemetry tracing for colconv
// pipelines.
//
// Until Init is called every span is a no-op, so components can start
// spans unconditionally.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/ajitpratap0/colconv"

// TracingConfig contains tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	SamplingRate   float64
	// ExporterType is "stdout" or "none".
	ExporterType string
	// Output receives stdout exporter spans. Defaults to os.Stderr.
	Output       io.Writer
	BatchTimeout time.Duration
}

// DefaultTracingConfig returns a disabled configuration with sane values.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName:    "colconv",
		ServiceVersion: "dev",
		Environment:    "development",
		SamplingRate:   1.0,
		ExporterType:   "stdout",
		BatchTimeout:   5 * time.Second,
	}
}

var (
	mu     sync.Mutex
	tracer trace.Tracer = otel.Tracer(instrumentationName)
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Init installs a global tracer provider. When tracing is disabled it
// leaves the no-op provider in place and returns a no-op shutdown.
func Init(cfg TracingConfig) (ShutdownFunc, error) {
	if !cfg.Enabled || cfg.ExporterType == "none" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.ExporterType {
	case "", "stdout":
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q", cfg.ExporterType)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case cfg.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
	)
	SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// SetTracerProvider replaces the provider spans are created from.
func SetTracerProvider(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	mu.Lock()
	tracer = tp.Tracer(instrumentationName)
	mu.Unlock()
}

// Tracer returns the package tracer.
func Tracer() trace.Tracer {
	mu.Lock()
	defer mu.Unlock()
	return tracer
}

// Span wraps a trace span and buffers attributes until End.
type Span struct {
	span       trace.Span
	attributes []attribute.KeyValue
}

// StartSpan starts a span named name as a child of ctx.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, span := Tracer().Start(ctx, name)
	return ctx, &Span{span: span}
}

// SetAttribute adds an attribute to the span.
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// RecordError marks the span as failed. A nil error marks it ok.
func (s *Span) RecordError(err error) {
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End flushes buffered attributes and ends the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}
