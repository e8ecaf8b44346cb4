// Package columnar provides destination connectors for Arrow IPC, Parquet
// and Avro files. The connector type names the format.
package columnar

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/fileio"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/formats/columnar"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// ColumnarDestination writes typed rows into a columnar file.
type ColumnarDestination struct {
	settings core.Settings
	format   columnar.Format
	logger   *zap.Logger

	file   io.WriteCloser
	writer columnar.Writer
}

// NewColumnarDestination creates a destination for the format named by the
// connector type.
func NewColumnarDestination(settings core.Settings) (core.Destination, error) {
	format, err := columnar.ParseFormat(settings.Config.Type)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid columnar destination")
	}
	if settings.Config.Path == "" {
		return nil, errors.Newf(errors.ErrorTypeConfig, "%s destination requires a path", format)
	}
	settings = settings.WithDefaults()
	return &ColumnarDestination{settings: settings, format: format, logger: settings.Logger}, nil
}

// Open creates the file and writes the schema of header.
func (d *ColumnarDestination) Open(ctx context.Context, header *models.Header) error {
	file, err := fileio.Create(d.settings.Config)
	if err != nil {
		return err
	}

	writer, err := columnar.NewWriter(file, columnar.WriterConfig{
		Format:      d.format,
		Header:      header,
		Annotations: d.settings.Config.Annotations,
		Codec:       d.settings.Property("codec", ""),
	})
	if err != nil {
		_ = file.Close()
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create columnar writer").
			WithDetail("format", string(d.format))
	}

	d.file = file
	d.writer = writer
	d.logger.Info("columnar destination opened",
		zap.String("format", string(d.format)),
		zap.String("path", d.settings.Config.Path),
		zap.Int("columns", header.Len()),
		zap.Bool("annotations", d.settings.Config.Annotations))
	return nil
}

// Write appends one batch. Arrow and Parquet store it as one record batch
// or row group; Avro as one block.
func (d *ColumnarDestination) Write(ctx context.Context, rows []*models.Row) error {
	if d.writer == nil {
		return errors.New(errors.ErrorTypeInternal, "destination is not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.writer.Write(rows); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to write batch").
			WithDetail("format", string(d.format))
	}
	return nil
}

// Close writes the footer and closes the file.
func (d *ColumnarDestination) Close(ctx context.Context) error {
	if d.writer == nil {
		return nil
	}
	err := d.writer.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	rows := d.writer.RowsWritten()
	d.writer, d.file = nil, nil
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close columnar file").
			WithDetail("path", d.settings.Config.Path)
	}
	d.logger.Info("columnar destination closed",
		zap.String("format", string(d.format)),
		zap.Int64("rows", rows))
	return nil
}
