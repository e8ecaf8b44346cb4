// Package postgresql provides a PostgreSQL source connector built on a
// pgx connection pool. Column types are derived from the result OIDs and
// can be overridden by the declared columns of the source configuration.
package postgresql

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

const defaultMaxConns = 4

// PostgreSQLSource streams the rows of one query.
type PostgreSQLSource struct {
	settings core.Settings
	logger   *zap.Logger
	query    string

	pool     *pgxpool.Pool
	rows     pgx.Rows
	header   *models.Header
	rowsRead int64
}

// NewPostgreSQLSource creates a new PostgreSQL source connector. The query
// comes from the query setting or, failing that, from the "table"
// property.
func NewPostgreSQLSource(settings core.Settings) (core.Source, error) {
	settings = settings.WithDefaults()
	if settings.Config.DSN == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "postgresql source requires a dsn")
	}
	query, err := BuildQuery(settings)
	if err != nil {
		return nil, err
	}
	return &PostgreSQLSource{settings: settings, logger: settings.Logger, query: query}, nil
}

// BuildQuery returns the configured query or a full scan of the "table"
// property, which may be schema qualified.
func BuildQuery(settings core.Settings) (string, error) {
	if q := strings.TrimSpace(settings.Config.Query); q != "" {
		return q, nil
	}
	table := settings.Property("table", "")
	if table == "" {
		return "", errors.New(errors.ErrorTypeConfig, "either query or properties.table is required")
	}
	return "SELECT * FROM " + pgx.Identifier(strings.Split(table, ".")).Sanitize(), nil
}

// Open connects and starts the query.
func (s *PostgreSQLSource) Open(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(s.settings.Config.DSN)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse connection string")
	}
	poolConfig.MaxConns = defaultMaxConns
	if v := s.settings.Property("max_connections", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.Newf(errors.ErrorTypeConfig, "invalid max_connections %q", v)
		}
		poolConfig.MaxConns = int32(n)
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	s.pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to create connection pool")
	}
	if err := s.pool.Ping(ctx); err != nil {
		s.pool.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to postgresql")
	}

	s.rows, err = s.pool.Query(ctx, s.query)
	if err != nil {
		s.pool.Close()
		return errors.Wrap(err, errors.ErrorTypeQuery, "failed to execute query").
			WithDetail("query", s.query)
	}

	fields := s.rows.FieldDescriptions()
	cols := make([]models.Column, len(fields))
	for i, fd := range fields {
		cols[i] = models.NewColumn(fd.Name, ScalarTypeOf(fd.DataTypeOID))
	}
	s.header, err = models.NewHeader(core.DeclareTypes(cols, s.settings.Config.Columns)...)
	if err != nil {
		s.rows.Close()
		s.pool.Close()
		return errors.Wrap(err, errors.ErrorTypeData, "invalid result columns")
	}

	s.logger.Info("postgresql source opened",
		zap.Int("columns", s.header.Len()),
		zap.Int32("max_connections", poolConfig.MaxConns))
	return nil
}

// ScalarTypeOf maps a PostgreSQL type OID to the column type it is read as.
func ScalarTypeOf(oid uint32) models.ScalarType {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return models.Int
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return models.Double
	case pgtype.BoolOID:
		return models.Boolean
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return models.DateTime
	case pgtype.IntervalOID, pgtype.TimeOID:
		return models.Duration
	default:
		return models.String
	}
}

// Header returns the result columns.
func (s *PostgreSQLSource) Header() *models.Header {
	return s.header
}

// Read returns the next result row.
func (s *PostgreSQLSource) Read(ctx context.Context) ([]any, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read result row")
		}
		return nil, io.EOF
	}
	raw, err := s.rows.Values()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode result row")
	}
	s.rowsRead++

	values := make([]any, len(raw))
	for i, v := range raw {
		col := s.header.Column(i)
		value, ok := conversion.Coerce(s.settings.Env, col.Type, plain(v, col.Type))
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "cannot read %v as %s", v, col.Type).
				WithDetail("row", s.rowsRead).
				WithDetail("column", col.Name)
		}
		values[i] = value
	}
	return values, nil
}

// plain turns pgx values into values Coerce understands.
func plain(v any, t models.ScalarType) any {
	switch x := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Interval:
		if !x.Valid {
			return nil
		}
		const day = 24 * time.Hour
		return time.Duration(x.Microseconds)*time.Microsecond +
			time.Duration(x.Days)*day +
			time.Duration(x.Months)*30*day
	case pgtype.Time:
		if !x.Valid {
			return nil
		}
		return time.Duration(x.Microseconds) * time.Microsecond
	case [16]byte:
		return uuid.UUID(x).String()
	case map[string]any, []any:
		b, err := gojson.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	if t == models.String {
		switch v.(type) {
		case string, []byte:
			return v
		case time.Time, bool, time.Duration, float32, float64, int16, int32, int64:
			return v
		default:
			return fmt.Sprint(v)
		}
	}
	return v
}

// Close ends the query and closes the pool.
func (s *PostgreSQLSource) Close(ctx context.Context) error {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	s.logger.Debug("postgresql source closed", zap.Int64("rows", s.rowsRead))
	return nil
}
