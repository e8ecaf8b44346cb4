// Package json provides a JSON destination connector writing one object
// per row, either line-delimited or as a single array.
package json

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/fileio"
	"github.com/ajitpratap0/colconv/pkg/errors"
	jsonenc "github.com/ajitpratap0/colconv/pkg/json"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// JSONDestination writes rows to a JSON file.
type JSONDestination struct {
	settings core.Settings
	logger   *zap.Logger
	array    bool

	file    io.WriteCloser
	encoder *jsonenc.Encoder
}

// NewJSONDestination creates a new JSON destination connector
func NewJSONDestination(settings core.Settings) (core.Destination, error) {
	if settings.Config.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "json destination requires a path")
	}
	var array bool
	switch f := strings.ToLower(settings.Property("format", "lines")); f {
	case "lines", "jsonl", "ndjson":
	case "array":
		array = true
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported json format %q", f)
	}
	settings = settings.WithDefaults()
	return &JSONDestination{settings: settings, logger: settings.Logger, array: array}, nil
}

// Open creates the file.
func (d *JSONDestination) Open(ctx context.Context, header *models.Header) error {
	file, err := fileio.Create(d.settings.Config)
	if err != nil {
		return err
	}
	d.file = file
	d.encoder = jsonenc.NewEncoder(file, header, jsonenc.Options{
		Array:       d.array,
		Annotations: d.settings.Config.Annotations,
	})
	d.logger.Info("json destination opened",
		zap.String("path", d.settings.Config.Path),
		zap.Bool("array", d.array))
	return nil
}

// Write encodes a batch of rows.
func (d *JSONDestination) Write(ctx context.Context, rows []*models.Row) error {
	if d.encoder == nil {
		return errors.New(errors.ErrorTypeInternal, "destination is not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.encoder.Encode(rows); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write json records")
	}
	return nil
}

// Close terminates the document and closes the file.
func (d *JSONDestination) Close(ctx context.Context) error {
	if d.encoder == nil {
		return nil
	}
	err := d.encoder.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	rows := d.encoder.Count()
	d.encoder, d.file = nil, nil
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close json file")
	}
	d.logger.Info("json destination closed", zap.Int64("rows", rows))
	return nil
}
