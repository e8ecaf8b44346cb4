// Package csv provides a CSV source connector. Cells are text; each column
// is typed with the String conversion rules of the run's culture.
//
// Column types come from, in order of precedence:
//   - the columns list of the source configuration
//   - header cells written as "name:Type"
//   - String for everything else
//
// A typed cell holding a fallback annotation, as written by the CSV
// destination for a failed conversion, reads back as the sentinel of its
// column type. The annotations recognized are set with the fallback_values
// property, a comma separated list that defaults to "N/A".
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/fileio"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// CSVSource reads rows from a delimited text file.
type CSVSource struct {
	settings core.Settings
	logger   *zap.Logger

	file      io.ReadCloser
	reader    *csv.Reader
	header    *models.Header
	positions []int    // file field of each header column
	pending   []string // first record when it was read to size the header
	fallbacks map[string]struct{}
	rowsRead  int64
}

// NewCSVSource creates a new CSV source connector
func NewCSVSource(settings core.Settings) (core.Source, error) {
	if settings.Config.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "csv source requires a path")
	}
	if _, err := Delimiter(settings.Config); err != nil {
		return nil, err
	}
	settings = settings.WithDefaults()
	return &CSVSource{
		settings:  settings,
		logger:    settings.Logger,
		fallbacks: fallbackValues(settings.Property("fallback_values", conversion.DefaultFallbackValue)),
	}, nil
}

func fallbackValues(list string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, v := range strings.Split(list, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

// Delimiter returns the single-character field separator of cfg.
func Delimiter(cfg config.ConnectorConfig) (rune, error) {
	if cfg.Delimiter == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(cfg.Delimiter)
	if size != len(cfg.Delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, errors.Newf(errors.ErrorTypeConfig, "invalid csv delimiter %q", cfg.Delimiter)
	}
	return r, nil
}

// Open opens the file and resolves the header.
func (s *CSVSource) Open(ctx context.Context) error {
	file, err := fileio.Open(s.settings.Config)
	if err != nil {
		return err
	}
	s.file = file

	comma, _ := Delimiter(s.settings.Config)
	s.reader = csv.NewReader(file)
	s.reader.Comma = comma
	s.reader.FieldsPerRecord = -1
	s.reader.ReuseRecord = true

	if err := s.resolveHeader(); err != nil {
		_ = file.Close()
		return err
	}

	s.logger.Info("csv source opened",
		zap.String("path", s.settings.Config.Path),
		zap.Int("columns", s.header.Len()))
	return nil
}

func (s *CSVSource) resolveHeader() error {
	cfg := s.settings.Config
	var names []string
	if cfg.HasHeader {
		rec, err := s.reader.Read()
		if err == io.EOF {
			return errors.New(errors.ErrorTypeData, "csv file is empty")
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to read csv header")
		}
		names = append(names, rec...)
	}

	var cols []models.Column
	switch {
	case len(cfg.Columns) > 0 && names != nil:
		at := make(map[string]int, len(names))
		for i, n := range names {
			at[models.ParseColumn(n).Name] = i
		}
		for _, c := range cfg.Columns {
			i, ok := at[c.Name]
			if !ok {
				return errors.Newf(errors.ErrorTypeConfig, "column %q is not in the csv header", c.Name)
			}
			cols = append(cols, c)
			s.positions = append(s.positions, i)
		}
	case len(cfg.Columns) > 0:
		cols = append(cols, cfg.Columns...)
		for i := range cols {
			s.positions = append(s.positions, i)
		}
	case names != nil:
		for i, n := range names {
			cols = append(cols, models.ParseColumn(n))
			s.positions = append(s.positions, i)
		}
	default:
		rec, err := s.reader.Read()
		if err != nil && err != io.EOF {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to read csv record")
		}
		if err == nil {
			s.pending = append([]string(nil), rec...)
		}
		for i := range s.pending {
			cols = append(cols, models.NewColumn(columnName(i), models.String))
			s.positions = append(s.positions, i)
		}
	}

	header, err := models.NewHeader(cols...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid csv columns")
	}
	s.header = header
	return nil
}

// Header returns the resolved columns.
func (s *CSVSource) Header() *models.Header {
	return s.header
}

// Read returns the typed values of the next record.
func (s *CSVSource) Read(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := s.pending
	s.pending = nil
	if rec == nil {
		var err error
		rec, err = s.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read csv record").
				WithDetail("row", s.rowsRead+1)
		}
	}
	s.rowsRead++

	values := make([]any, s.header.Len())
	for i, pos := range s.positions {
		var text string
		if pos < len(rec) {
			text = rec[pos]
		}
		col := s.header.Column(i)
		if _, fallback := s.fallbacks[text]; fallback && col.Type != models.String {
			values[i] = models.Sentinel(col.Type)
			continue
		}
		v, ok := conversion.ParseText(s.settings.Env, col.Type, text)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "cannot read %q as %s", text, col.Type).
				WithDetail("row", s.rowsRead).
				WithDetail("column", col.Name)
		}
		values[i] = v
	}
	return values, nil
}

// Close closes the file.
func (s *CSVSource) Close(ctx context.Context) error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.logger.Debug("csv source closed", zap.Int64("rows", s.rowsRead))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close csv file")
	}
	return nil
}

func columnName(i int) string {
	return "column_" + strconv.Itoa(i+1)
}
