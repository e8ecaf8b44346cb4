// Package json provides a JSON source connector reading either a JSON
// array of objects or line-delimited objects (JSONL/NDJSON).
package json

import (
	"bufio"
	"context"
	"io"
	"math"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/fileio"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// JSONFormat represents the JSON file format
type JSONFormat string

const (
	// JSONArray represents a file containing a JSON array of objects
	JSONArray JSONFormat = "array"
	// JSONLines represents line-delimited JSON (JSONL/NDJSON)
	JSONLines JSONFormat = "lines"
	// JSONAuto picks array or lines from the first byte
	JSONAuto JSONFormat = "auto"
)

// ParseFormat reads the "format" property.
func ParseFormat(s string) (JSONFormat, error) {
	switch f := JSONFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", JSONAuto:
		return JSONAuto, nil
	case JSONArray, JSONLines:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "invalid json format %q", s)
	}
}

// JSONSource reads objects from a JSON file. Each top-level key is a
// column.
type JSONSource struct {
	settings core.Settings
	logger   *zap.Logger
	format   JSONFormat

	file     io.ReadCloser
	decoder  *gojson.Decoder
	header   *models.Header
	pending  map[string]any
	done     bool
	rowsRead int64
}

// NewJSONSource creates a new JSON source connector
func NewJSONSource(settings core.Settings) (core.Source, error) {
	settings = settings.WithDefaults()
	if settings.Config.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "json source requires a path")
	}
	format, err := ParseFormat(settings.Property("format", ""))
	if err != nil {
		return nil, err
	}
	return &JSONSource{settings: settings, logger: settings.Logger, format: format}, nil
}

// Open opens the file and resolves the header. Without configured columns
// the keys of the first object become columns in lexical order, typed
// from their JSON values.
func (s *JSONSource) Open(ctx context.Context) error {
	file, err := fileio.Open(s.settings.Config)
	if err != nil {
		return err
	}
	s.file = file

	reader := bufio.NewReader(file)
	if s.format == JSONAuto {
		s.format = sniff(reader)
	}
	s.decoder = gojson.NewDecoder(reader)
	s.decoder.UseNumber()

	if err := s.start(); err != nil {
		_ = file.Close()
		return err
	}

	s.logger.Info("json source opened",
		zap.String("path", s.settings.Config.Path),
		zap.String("format", string(s.format)),
		zap.Int("columns", s.header.Len()))
	return nil
}

func (s *JSONSource) start() error {
	if s.format == JSONArray {
		token, err := s.decoder.Token()
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to read json array start")
		}
		if delim, ok := token.(gojson.Delim); !ok || delim != '[' {
			return errors.Newf(errors.ErrorTypeData, "expected json array, got %v", token)
		}
	}

	cols := s.settings.Config.Columns
	if len(cols) == 0 {
		first, err := s.next()
		if err != nil && err != io.EOF {
			return err
		}
		s.pending = first
		cols = inferColumns(first)
	}

	header, err := models.NewHeader(cols...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid json columns")
	}
	s.header = header
	return nil
}

// sniff peeks at the first non-space byte.
func sniff(r *bufio.Reader) JSONFormat {
	for n := 1; ; n++ {
		b, err := r.Peek(n)
		if err != nil || len(b) < n {
			return JSONLines
		}
		switch b[n-1] {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return JSONArray
		default:
			return JSONLines
		}
	}
}

func inferColumns(obj map[string]any) []models.Column {
	names := make([]string, 0, len(obj))
	for k := range obj {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]models.Column, len(names))
	for i, n := range names {
		t := models.String
		switch v := obj[n].(type) {
		case bool:
			t = models.Boolean
		case gojson.Number:
			if _, ok := number(v).(int32); ok {
				t = models.Int
			} else {
				t = models.Double
			}
		}
		cols[i] = models.NewColumn(n, t)
	}
	return cols
}

// Header returns the resolved columns.
func (s *JSONSource) Header() *models.Header {
	return s.header
}

// Read returns the typed values of the next object.
func (s *JSONSource) Read(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj := s.pending
	s.pending = nil
	if obj == nil {
		var err error
		if obj, err = s.next(); err != nil {
			return nil, err
		}
	}

	values := make([]any, s.header.Len())
	for i := 0; i < s.header.Len(); i++ {
		col := s.header.Column(i)
		raw := obj[col.Name]
		switch v := raw.(type) {
		case gojson.Number:
			raw = number(v)
		case map[string]any, []any:
			return nil, errors.Newf(errors.ErrorTypeData, "nested json value in column %q", col.Name).
				WithDetail("row", s.rowsRead)
		}
		value, ok := conversion.Coerce(s.settings.Env, col.Type, raw)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "cannot read %v as %s", raw, col.Type).
				WithDetail("row", s.rowsRead).
				WithDetail("column", col.Name)
		}
		values[i] = value
	}
	return values, nil
}

func (s *JSONSource) next() (map[string]any, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.format == JSONArray && !s.decoder.More() {
		s.done = true
		return nil, io.EOF
	}

	var obj map[string]any
	if err := s.decoder.Decode(&obj); err != nil {
		if err == io.EOF {
			s.done = true
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode json object").
			WithDetail("row", s.rowsRead+1)
	}
	s.rowsRead++
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}

// number keeps integers that fit an Int and reads the rest as Double.
func number(n gojson.Number) any {
	if i, err := n.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int32(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// Close closes the file.
func (s *JSONSource) Close(ctx context.Context) error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.logger.Debug("json source closed", zap.Int64("rows", s.rowsRead))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close json file")
	}
	return nil
}
