package conversion

import (
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// Row is the part of a row a plan needs: one read and one write.
// *models.Row implements it.
type Row interface {
	Get(col models.Column) any
	Set(col models.Column, value any, annotation string)
}

// Outcome is the result of converting one value. When Failed is set,
// Value is the target type's sentinel and Annotation the fallback text.
type Outcome struct {
	Value      any
	Annotation string
	Failed     bool
}

// columnConstructors builds the output column of each target type.
var columnConstructors = map[models.ScalarType]func(name string) models.Column{
	models.String:   typedColumn(models.String),
	models.Int:      typedColumn(models.Int),
	models.DateTime: typedColumn(models.DateTime),
	models.Boolean:  typedColumn(models.Boolean),
	models.Double:   typedColumn(models.Double),
	models.Duration: typedColumn(models.Duration),
}

func typedColumn(t models.ScalarType) func(string) models.Column {
	return func(name string) models.Column {
		return models.NewColumn(name, t)
	}
}

// Plan is a compiled conversion: the output column bound to its
// conversion rule. A plan never changes after Compile and may be shared
// by concurrent workers.
type Plan struct {
	source   models.Column
	output   models.Column
	fallback string
	env      *Environment
	convert  convertFunc
}

// Compile validates req and binds its rule. Every error it returns is a
// configuration error.
func Compile(req Request) (*Plan, error) {
	req = req.Resolve()
	pair := Pair{Source: req.Source.Type, Target: req.Target}

	if !IsSupported(pair.Source, pair.Target) {
		return nil, errors.Newf(errors.ErrorTypeConfig, "cannot convert %s to %s", pair.Source, pair.Target).
			WithDetail("column", req.Source.Name).
			WithDetail("source", pair.Source.String()).
			WithDetail("target", pair.Target.String())
	}

	newColumn, ok := columnConstructors[req.Target]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "no column type for %s", req.Target).
			WithDetail("target", req.Target.String())
	}

	fn, err := lookupRule(pair)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "cannot compile conversion")
	}

	return &Plan{
		source:   req.Source,
		output:   newColumn(req.TargetColumnName),
		fallback: req.FallbackValue,
		env:      req.Environment,
		convert:  fn,
	}, nil
}

// Source returns the column the plan reads.
func (p *Plan) Source() models.Column { return p.source }

// Output returns the column the plan writes.
func (p *Plan) Output() models.Column { return p.output }

// FallbackValue returns the annotation written on failure.
func (p *Plan) FallbackValue() string { return p.fallback }

// Pair returns the conversion direction.
func (p *Plan) Pair() Pair {
	return Pair{Source: p.source.Type, Target: p.output.Type}
}

// Convert converts a single source value.
func (p *Plan) Convert(value any) Outcome {
	out, ok := p.convert(p.env, value)
	if !ok {
		return Outcome{
			Value:      models.Sentinel(p.output.Type),
			Annotation: p.fallback,
			Failed:     true,
		}
	}
	return Outcome{Value: out}
}

// Apply reads the source value of row, converts it and writes the result
// to the output column.
func (p *Plan) Apply(row Row) Outcome {
	o := p.Convert(row.Get(p.source))
	row.Set(p.output, o.Value, o.Annotation)
	return o
}
