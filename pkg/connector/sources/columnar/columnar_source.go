// Package columnar provides source connectors for Arrow IPC, Parquet and
// Avro files. The connector type names the format. Annotation columns
// written next to typed columns are read back as ordinary String columns.
package columnar

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/fileio"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/formats/columnar"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// ColumnarSource reads the rows of a columnar file.
type ColumnarSource struct {
	settings core.Settings
	format   columnar.Format
	logger   *zap.Logger

	header *models.Header
	rows   [][]any
	next   int
}

// NewColumnarSource creates a source for the format named by the connector
// type.
func NewColumnarSource(settings core.Settings) (core.Source, error) {
	format, err := columnar.ParseFormat(settings.Config.Type)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid columnar source")
	}
	if settings.Config.Path == "" {
		return nil, errors.Newf(errors.ErrorTypeConfig, "%s source requires a path", format)
	}
	settings = settings.WithDefaults()
	return &ColumnarSource{settings: settings, format: format, logger: settings.Logger}, nil
}

// Open loads the file. Declared column types replace the stored ones; the
// values are converted when read.
func (s *ColumnarSource) Open(ctx context.Context) error {
	file, err := fileio.Open(s.settings.Config)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read file").
			WithDetail("path", s.settings.Config.Path)
	}

	table, err := columnar.Read(data, s.format)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to decode file").
			WithDetail("format", string(s.format)).
			WithDetail("path", s.settings.Config.Path)
	}

	cols := core.DeclareTypes(table.Header.Columns(), s.settings.Config.Columns)
	header, err := models.NewHeader(cols...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid columns")
	}
	s.header = header
	s.rows = table.Rows
	s.next = 0

	s.logger.Info("columnar source opened",
		zap.String("format", string(s.format)),
		zap.String("path", s.settings.Config.Path),
		zap.Int("columns", header.Len()),
		zap.Int("rows", len(s.rows)))
	return nil
}

// Header returns the stored columns.
func (s *ColumnarSource) Header() *models.Header {
	return s.header
}

// Read returns the next row.
func (s *ColumnarSource) Read(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	raw := s.rows[s.next]
	s.rows[s.next] = nil
	s.next++

	values := make([]any, s.header.Len())
	for i := range values {
		if i >= len(raw) {
			break
		}
		col := s.header.Column(i)
		v, ok := conversion.Coerce(s.settings.Env, col.Type, raw[i])
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "cannot read %v as %s", raw[i], col.Type).
				WithDetail("row", s.next).
				WithDetail("column", col.Name)
		}
		values[i] = v
	}
	return values, nil
}

// Close releases the loaded rows.
func (s *ColumnarSource) Close(ctx context.Context) error {
	s.logger.Debug("columnar source closed", zap.Int("rows", s.next))
	s.rows = nil
	return nil
}
