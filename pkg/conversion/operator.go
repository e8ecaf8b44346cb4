package conversion

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/metrics"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// Arguments are the user-facing settings of a conversion operator.
type Arguments struct {
	// Column is the name of the source column.
	Column string `yaml:"column" json:"column"`
	// ConvertTo is a scalar type name, matched case-insensitively.
	ConvertTo string `yaml:"convert_to" json:"convert_to"`
	// NewColumnName names the output column. Optional.
	NewColumnName string `yaml:"new_column_name" json:"new_column_name"`
	// ExceptionValue annotates rows that fail to convert. Optional.
	ExceptionValue string `yaml:"exception_value" json:"exception_value"`
}

// Stats counts the rows an operator handled.
type Stats struct {
	Rows   int64
	Failed int64
}

// Operator adapts a compiled plan to the pipeline: it contributes one
// column to the header and fills it in every row.
type Operator struct {
	name    string
	plan    *Plan
	logger  *zap.Logger
	metrics *metrics.Collector

	rows   atomic.Int64
	failed atomic.Int64
}

// Option configures an Operator.
type Option func(*operatorOptions)

type operatorOptions struct {
	env     *Environment
	logger  *zap.Logger
	metrics *metrics.Collector
}

// WithEnvironment sets the culture and time zone of the conversion.
func WithEnvironment(env *Environment) Option {
	return func(o *operatorOptions) { o.env = env }
}

// WithLogger sets the operator logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *operatorOptions) { o.logger = l }
}

// WithMetrics records each conversion on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *operatorOptions) { o.metrics = c }
}

// NewOperator resolves args against header and compiles the conversion.
// Any error is a configuration error and must stop pipeline setup.
func NewOperator(header *models.Header, args Arguments, opts ...Option) (*Operator, error) {
	o := operatorOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	if strings.TrimSpace(args.Column) == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "column is required")
	}
	source, ok := header.Lookup(args.Column)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown column %q", args.Column).
			WithDetail("column", args.Column)
	}

	target, err := models.ParseScalarType(args.ConvertTo)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid convert_to").
			WithDetail("convert_to", args.ConvertTo)
	}

	outputName := args.NewColumnName
	if outputName == "" {
		outputName = derivedColumnNameAs(source, target, args.ConvertTo)
	}
	plan, err := Compile(Request{
		Source:           source,
		Target:           target,
		TargetColumnName: outputName,
		FallbackValue:    args.ExceptionValue,
		Environment:      o.env,
	})
	if err != nil {
		return nil, err
	}

	name := plan.Output().Name
	op := &Operator{
		name:    name,
		plan:    plan,
		metrics: o.metrics,
		logger: o.logger.With(
			zap.String("component", "conversion"),
			zap.String("operator", name),
			zap.String("source", source.String()),
			zap.Stringer("target", target),
		),
	}
	op.logger.Debug("conversion compiled", zap.String("fallback", plan.FallbackValue()))
	return op, nil
}

// Name returns the output column name.
func (op *Operator) Name() string {
	return op.name
}

// Plan returns the compiled plan.
func (op *Operator) Plan() *Plan {
	return op.plan
}

// HandleColumns appends the output column to header.
func (op *Operator) HandleColumns(header *models.Header) error {
	if err := header.AddColumns(op.plan.Output()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "cannot add output column").
			WithDetail("column", op.plan.Output().Name)
	}
	return nil
}

// HandleRow converts the source value of row into the output column.
// Failed conversions are recorded, never returned.
func (op *Operator) HandleRow(row Row) {
	value := row.Get(op.plan.Source())
	o := op.plan.Convert(value)
	row.Set(op.plan.Output(), o.Value, o.Annotation)

	op.rows.Add(1)
	if o.Failed {
		op.failed.Add(1)
		if ce := op.logger.Check(zap.DebugLevel, "conversion fell back"); ce != nil {
			ce.Write(zap.Any("value", value))
		}
	}
	if op.metrics != nil {
		pair := op.plan.Pair()
		op.metrics.RecordConversion(pair.Source.String(), pair.Target.String(), o.Failed)
	}
}

// Stats returns the rows handled so far.
func (op *Operator) Stats() Stats {
	return Stats{Rows: op.rows.Load(), Failed: op.failed.Load()}
}
