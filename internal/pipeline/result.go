package pipeline

import (
	"time"

	"go.uber.org/zap"
)

// Result summarizes one run.
type Result struct {
	RunID    string
	Rows     int64
	Batches  int64
	Duration time.Duration

	operators []Operator
}

// OperatorResult counts the rows one conversion handled.
type OperatorResult struct {
	Name   string
	Rows   int64
	Failed int64
}

// Operators returns the statistics of every conversion in order.
func (r *Result) Operators() []OperatorResult {
	out := make([]OperatorResult, len(r.operators))
	for i, op := range r.operators {
		s := op.Stats()
		out[i] = OperatorResult{Name: op.Name(), Rows: s.Rows, Failed: s.Failed}
	}
	return out
}

// Failed returns the number of failed conversions over all operators.
func (r *Result) Failed() int64 {
	var n int64
	for _, op := range r.operators {
		n += op.Stats().Failed
	}
	return n
}

// Throughput returns rows per second.
func (r *Result) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Rows) / r.Duration.Seconds()
}

func (r *Result) fields() []zap.Field {
	fields := []zap.Field{
		zap.Int64("rows", r.Rows),
		zap.Int64("batches", r.Batches),
		zap.Int64("failed_conversions", r.Failed()),
		zap.Duration("duration", r.Duration),
		zap.Float64("throughput_rps", r.Throughput()),
	}
	for _, op := range r.Operators() {
		fields = append(fields, zap.Int64("failed."+op.Name, op.Failed))
	}
	return fields
}
