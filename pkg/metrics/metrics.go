// Package metrics exposes Prometheus collectors for colconv pipelines.
//
// # Overview
//
// Metrics are registered once with the default Prometheus registry through
// promauto and shared by every component. Components record through a
// Collector, which carries the component name used as a label.
//
// # Basic Usage
//
//	c := metrics.NewCollector("csv")
//	c.RecordConversion("String", "Int", false)
//	c.RecordRows("csv", "json", metrics.StatusSuccess, 500)
//
//	timer := metrics.NewTimer("batch")
//	processBatch(rows)
//	c.ObserveLatency("batch", "csv", "json", timer.Stop())
//
// The CLI serves the default registry with promhttp when a metrics address
// is configured.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion outcomes used as the outcome label.
const (
	OutcomeConverted = "converted"
	OutcomeFallback  = "fallback"
)

// Row statuses used as the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// ConversionsTotal counts single value conversions.
	// Labels: source type, target type, outcome (converted/fallback)
	//
	// Example:
	//	metrics.ConversionsTotal.WithLabelValues("String", "Int", metrics.OutcomeFallback).Inc()
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colconv_conversions_total",
			Help: "Total number of value conversions by outcome",
		},
		[]string{"source", "target", "outcome"},
	)

	// RowsProcessed tracks rows that went through a pipeline.
	// Labels: source (connector), destination (connector), status (success/failure)
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colconv_rows_processed_total",
			Help: "Total number of rows processed",
		},
		[]string{"source", "destination", "status"},
	)

	// ProcessingLatency tracks batch latencies in nanoseconds.
	// Labels: operation (read/convert/write), source, destination
	ProcessingLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "colconv_processing_latency_nanoseconds",
			Help: "Processing latency in nanoseconds",
			Buckets: []float64{
				1000,   // 1μs
				10000,  // 10μs
				100000, // 100μs
				1e6,    // 1ms
				1e7,    // 10ms
				1e8,    // 100ms
				1e9,    // 1s
			},
		},
		[]string{"operation", "source", "destination"},
	)

	// ConfiguredOperators is the number of conversion operators in the
	// running pipeline.
	ConfiguredOperators = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "colconv_configured_operators",
			Help: "Number of configured conversion operators",
		},
		[]string{"component"},
	)

	// Throughput tracks rows per second.
	Throughput = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "colconv_throughput_rows_per_second",
			Help: "Current throughput in rows per second",
		},
		[]string{"source", "destination"},
	)
)

// Collector records metrics on behalf of one component. It is safe for
// concurrent use.
type Collector struct {
	name        string
	conversions *prometheus.CounterVec
	rows        *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	operators   *prometheus.GaugeVec
}

// NewCollector creates a collector for the named component.
func NewCollector(name string) *Collector {
	return &Collector{
		name:        name,
		conversions: ConversionsTotal,
		rows:        RowsProcessed,
		latency:     ProcessingLatency,
		operators:   ConfiguredOperators,
	}
}

// Name returns the component name.
func (c *Collector) Name() string {
	return c.name
}

// RecordConversion counts one conversion between two type names.
func (c *Collector) RecordConversion(source, target string, fallback bool) {
	outcome := OutcomeConverted
	if fallback {
		outcome = OutcomeFallback
	}
	c.conversions.WithLabelValues(source, target, outcome).Inc()
}

// RecordRows adds n rows with the given status.
func (c *Collector) RecordRows(source, destination, status string, n int) {
	if n <= 0 {
		return
	}
	c.rows.WithLabelValues(source, destination, status).Add(float64(n))
}

// ObserveLatency records the duration of one operation.
func (c *Collector) ObserveLatency(operation, source, destination string, d time.Duration) {
	c.latency.WithLabelValues(operation, source, destination).Observe(float64(d.Nanoseconds()))
}

// SetOperators sets the configured operator gauge for this component.
func (c *Collector) SetOperators(n int) {
	c.operators.WithLabelValues(c.name).Set(float64(n))
}

// Timer measures the duration of an operation.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
//
// Example:
//
//	timer := metrics.NewTimer("write")
//	dest.Write(ctx, rows)
//	logger.Debug("batch written", zap.Duration("duration", timer.Stop()))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer name.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed time since the timer was created. It may be
// called more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker computes rows per second between resets and publishes
// the result to the Throughput gauge. Safe for concurrent use.
type ThroughputTracker struct {
	mu          sync.Mutex
	count       int64
	lastReset   time.Time
	source      string
	destination string
}

// NewThroughputTracker creates a tracker labelled with the pipeline endpoints.
func NewThroughputTracker(source, destination string) *ThroughputTracker {
	return &ThroughputTracker{
		lastReset:   time.Now(),
		source:      source,
		destination: destination,
	}
}

// Increment adds n to the row count.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset returns rows per second since the last reset, updates the
// gauge and starts a new period.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed

	t.count = 0
	t.lastReset = time.Now()

	Throughput.WithLabelValues(t.source, t.destination).Set(throughput)

	return throughput
}
