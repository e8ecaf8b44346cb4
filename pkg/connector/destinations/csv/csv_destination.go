// Package csv provides a CSV destination connector. Every cell is written
// as its annotation when it has one, and otherwise as its value rendered
// with the String rules of the run's culture.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/fileio"
	csvsource "github.com/ajitpratap0/colconv/pkg/connector/sources/csv"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// CSVDestination writes rows to a delimited text file.
type CSVDestination struct {
	settings    core.Settings
	logger      *zap.Logger
	typedHeader bool

	file           io.WriteCloser
	writer         *csv.Writer
	header         *models.Header
	record         []string
	recordsWritten int64
}

// NewCSVDestination creates a new CSV destination connector
func NewCSVDestination(settings core.Settings) (core.Destination, error) {
	if settings.Config.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "csv destination requires a path")
	}
	if _, err := csvsource.Delimiter(settings.Config); err != nil {
		return nil, err
	}
	typed, err := strconv.ParseBool(settings.Property("typed_header", "false"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid typed_header")
	}
	settings = settings.WithDefaults()
	return &CSVDestination{settings: settings, logger: settings.Logger, typedHeader: typed}, nil
}

// Open creates the file and writes the header line when configured.
func (d *CSVDestination) Open(ctx context.Context, header *models.Header) error {
	file, err := fileio.Create(d.settings.Config)
	if err != nil {
		return err
	}
	comma, _ := csvsource.Delimiter(d.settings.Config)

	d.file = file
	d.writer = csv.NewWriter(file)
	d.writer.Comma = comma
	d.header = header
	d.record = make([]string, header.Len())

	if d.settings.Config.HasHeader {
		for i, c := range header.Columns() {
			if d.typedHeader {
				d.record[i] = c.Name + ":" + c.Type.String()
			} else {
				d.record[i] = c.Name
			}
		}
		if err := d.writer.Write(d.record); err != nil {
			_ = file.Close()
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv header")
		}
	}

	d.logger.Info("csv destination opened",
		zap.String("path", d.settings.Config.Path),
		zap.Int("columns", header.Len()))
	return nil
}

// Write renders and writes a batch of rows.
func (d *CSVDestination) Write(ctx context.Context, rows []*models.Row) error {
	if d.writer == nil {
		return errors.New(errors.ErrorTypeInternal, "destination is not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, row := range rows {
		for i := range d.record {
			d.record[i] = Render(d.settings.Env, row.Cell(i))
		}
		if err := d.writer.Write(d.record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv record").
				WithDetail("row", d.recordsWritten+1)
		}
		d.recordsWritten++
	}
	d.writer.Flush()
	if err := d.writer.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush csv records")
	}
	return nil
}

// Render returns the text written for a cell.
func Render(env *conversion.Environment, cell models.Cell) string {
	if text, ok := cell.Display(); ok {
		return text
	}
	return conversion.FormatValue(env, cell.Value)
}

// Close flushes and closes the file.
func (d *CSVDestination) Close(ctx context.Context) error {
	if d.writer == nil {
		return nil
	}
	d.writer.Flush()
	err := d.writer.Error()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	d.writer, d.file = nil, nil
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close csv file")
	}
	d.logger.Info("csv destination closed", zap.Int64("rows", d.recordsWritten))
	return nil
}
