// Package pipeline runs a conversion: it reads rows from a source, applies
// the configured column conversions and writes the rows to a destination.
//
// # Overview
//
// A run proceeds in four steps:
//   - Open the source and take its header
//   - Compile one operator per conversion against the growing header, so a
//     conversion may read a column added by an earlier one
//   - Open the destination with the final header
//   - Stream batches: read up to BatchSize rows, convert them on Workers
//     goroutines, write the batch
//
// Batches are written in input order. Rows inside a batch are converted
// concurrently; the operators of one row always run in order on the same
// goroutine.
//
// # Basic Usage
//
//	p, err := pipeline.FromConfig(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := p.Run(ctx)
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/logger"
	"github.com/ajitpratap0/colconv/pkg/metrics"
	"github.com/ajitpratap0/colconv/pkg/models"
	"github.com/ajitpratap0/colconv/pkg/observability"
	"github.com/ajitpratap0/colconv/pkg/pool"
)

// Operator contributes columns to the header and fills them in every row.
type Operator interface {
	Name() string
	HandleColumns(header *models.Header) error
	HandleRow(row conversion.Row)
	Stats() conversion.Stats
}

// Config controls batching and concurrency.
type Config struct {
	// BatchSize is the number of rows read before conversion
	BatchSize int
	// Workers is the number of goroutines converting a batch
	Workers int
	// Timeout bounds the whole run; zero means no limit
	Timeout time.Duration
}

// DefaultConfig returns the configuration used for zero fields.
func DefaultConfig() Config {
	return Config{BatchSize: 1000, Workers: 4}
}

// Pipeline moves rows from one source to one destination.
type Pipeline struct {
	source      core.Source
	destination core.Destination
	conversions []conversion.Arguments
	config      Config

	env     *conversion.Environment
	logger  *zap.Logger
	metrics *metrics.Collector

	sourceName      string
	destinationName string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the run logger. Without one the global logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithEnvironment sets the culture and time zone of every conversion.
func WithEnvironment(env *conversion.Environment) Option {
	return func(p *Pipeline) { p.env = env }
}

// WithMetrics records rows, batch latency and conversions on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) { p.metrics = c }
}

// WithNames sets the connector names used as metric labels.
func WithNames(source, destination string) Option {
	return func(p *Pipeline) {
		p.sourceName = source
		p.destinationName = destination
	}
}

// New creates a pipeline. Conversions are compiled when Run opens the
// source.
func New(source core.Source, destination core.Destination, conversions []conversion.Arguments, cfg Config, opts ...Option) *Pipeline {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	p := &Pipeline{
		source:          source,
		destination:     destination,
		conversions:     conversions,
		config:          cfg,
		sourceName:      "source",
		destinationName: "destination",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.env == nil {
		p.env = conversion.DefaultEnvironment()
	}
	return p
}

// FromConfig validates cfg and creates its connectors through the
// registry. Connector packages must be imported for their registration.
func FromConfig(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env, err := cfg.Environment()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Get()
	}

	source, err := registry.CreateSource(core.NewSettings(cfg.Source, env, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	destination, err := registry.CreateDestination(core.NewSettings(cfg.Destination, env, log))
	if err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}

	conversions := make([]conversion.Arguments, len(cfg.Conversions))
	for i, c := range cfg.Conversions {
		conversions[i] = c.Arguments()
	}

	return New(source, destination, conversions,
		Config{
			BatchSize: cfg.Pipeline.BatchSize,
			Workers:   cfg.Pipeline.GetWorkers(),
			Timeout:   cfg.Pipeline.Timeout,
		},
		WithLogger(log),
		WithEnvironment(env),
		WithMetrics(metrics.NewCollector("pipeline")),
		WithNames(cfg.Source.Type, cfg.Destination.Type),
	), nil
}

// Run executes the pipeline until the source is exhausted, an error
// occurs or ctx is done. The result is returned even on error and holds
// what was written so far.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	log := logger.FromContext(ctx, p.logger).With(zap.String("component", "pipeline"))

	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	defer span.End()
	span.SetAttribute("run_id", runID)
	span.SetAttribute("source", p.sourceName)
	span.SetAttribute("destination", p.destinationName)
	span.SetAttribute("conversions", len(p.conversions))

	log.Info("starting pipeline",
		zap.String("source", p.sourceName),
		zap.String("destination", p.destinationName),
		zap.Int("conversions", len(p.conversions)),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.Workers))

	result := &Result{RunID: runID}
	start := time.Now()
	err := p.run(ctx, log, result)
	result.Duration = time.Since(start)

	span.SetAttribute("rows", result.Rows)
	span.SetAttribute("failed", result.Failed())
	span.RecordError(err)

	if err != nil {
		log.Error("pipeline failed", append(result.fields(), errors.Fields(err)...)...)
		return result, err
	}
	log.Info("pipeline completed", result.fields()...)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, result *Result) (err error) {
	if err := p.source.Open(ctx); err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if cerr := p.source.Close(ctx); cerr != nil {
			log.Warn("failed to close source", errors.Fields(cerr)...)
		}
	}()

	input := p.source.Header()
	if input == nil {
		return errors.New(errors.ErrorTypeInternal, "source has no header after open")
	}
	header := input.Clone()

	ops, err := p.buildOperators(header, log)
	if err != nil {
		return err
	}
	result.operators = ops
	if p.metrics != nil {
		p.metrics.SetOperators(len(ops))
	}

	if err := p.destination.Open(ctx, header); err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	defer func() {
		cerr := p.destination.Close(ctx)
		if cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination: %w", cerr)
		}
	}()

	rows := pool.NewRowPool(header)
	var throughput *metrics.ThroughputTracker
	if p.metrics != nil {
		throughput = metrics.NewThroughputTracker(p.sourceName, p.destinationName)
	}

	batch := make([]*models.Row, 0, p.config.BatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return contextError(err)
		}

		var done bool
		batch, done, err = p.readBatch(ctx, rows, batch[:0], input.Len())
		if len(batch) > 0 {
			werr := p.processBatch(ctx, ops, batch, result)
			rows.PutAll(batch)
			if werr != nil {
				return werr
			}
			if throughput != nil {
				throughput.Increment(int64(len(batch)))
			}
		}
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	if throughput != nil {
		throughput.GetAndReset()
	}
	return nil
}

// buildOperators compiles the conversions in order. Each operator adds
// its column to header before the next one is compiled.
func (p *Pipeline) buildOperators(header *models.Header, log *zap.Logger) ([]Operator, error) {
	ops := make([]Operator, 0, len(p.conversions))
	for i, args := range p.conversions {
		op, err := conversion.NewOperator(header, args,
			conversion.WithEnvironment(p.env),
			conversion.WithLogger(log),
			conversion.WithMetrics(p.metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("conversion %d: %w", i+1, err)
		}
		if err := op.HandleColumns(header); err != nil {
			return nil, fmt.Errorf("conversion %d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// readBatch fills batch with up to BatchSize rows. done is set once the
// source is exhausted.
func (p *Pipeline) readBatch(ctx context.Context, rows *pool.RowPool, batch []*models.Row, width int) ([]*models.Row, bool, error) {
	for len(batch) < p.config.BatchSize {
		values, err := p.source.Read(ctx)
		if err == io.EOF {
			return batch, true, nil
		}
		if err != nil {
			return batch, false, fmt.Errorf("failed to read source: %w", err)
		}
		if len(values) != width {
			return batch, false, errors.Newf(errors.ErrorTypeData,
				"source returned %d values for %d columns", len(values), width)
		}
		row := rows.Get()
		row.Load(values)
		batch = append(batch, row)
	}
	return batch, false, nil
}

func (p *Pipeline) processBatch(ctx context.Context, ops []Operator, batch []*models.Row, result *Result) error {
	ctx, span := observability.StartSpan(ctx, "pipeline.batch")
	defer span.End()
	span.SetAttribute("batch", result.Batches+1)
	span.SetAttribute("rows", len(batch))

	timer := metrics.NewTimer("batch")
	err := p.convert(ctx, ops, batch)
	if err == nil {
		err = p.destination.Write(ctx, batch)
		if err != nil {
			err = fmt.Errorf("failed to write batch: %w", err)
		}
	}
	span.RecordError(err)

	if p.metrics != nil {
		p.metrics.ObserveLatency(timer.Name(), p.sourceName, p.destinationName, timer.Stop())
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
		}
		p.metrics.RecordRows(p.sourceName, p.destinationName, status, len(batch))
	}
	if err != nil {
		return err
	}

	result.Rows += int64(len(batch))
	result.Batches++
	return nil
}

// convert runs every operator over the batch, splitting it into one
// contiguous chunk per worker.
func (p *Pipeline) convert(ctx context.Context, ops []Operator, batch []*models.Row) error {
	if len(ops) == 0 {
		return nil
	}

	workers := p.config.Workers
	if workers > len(batch) {
		workers = len(batch)
	}
	chunk := (len(batch) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(batch); start += chunk {
		part := batch[start:min(start+chunk, len(batch))]
		g.Go(func() error {
			for _, row := range part {
				for _, op := range ops {
					op.HandleRow(row)
				}
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return contextError(err)
	}
	return nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrorTypeTimeout, "pipeline timed out")
	}
	return err
}
