// Package sqldb provides query sources for databases reached through
// database/sql drivers: MySQL and Snowflake.
package sqldb

import (
	"context"
	"database/sql"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// Dialect identifies the driver a source uses.
type Dialect string

const (
	MySQL     Dialect = "mysql"
	Snowflake Dialect = "snowflake"
)

const defaultMaxOpenConns = 4

// SQLSource streams the rows of one query through database/sql.
type SQLSource struct {
	settings core.Settings
	logger   *zap.Logger
	dialect  Dialect
	dsn      string

	// wire parses the text drivers return for decimals and times.
	wire *conversion.Environment

	db       *sql.DB
	rows     *sql.Rows
	header   *models.Header
	scan     []any
	rowsRead int64
}

// NewMySQLSource creates a MySQL source connector.
func NewMySQLSource(settings core.Settings) (core.Source, error) {
	return newSQLSource(MySQL, settings)
}

// NewSnowflakeSource creates a Snowflake source connector.
func NewSnowflakeSource(settings core.Settings) (core.Source, error) {
	return newSQLSource(Snowflake, settings)
}

func newSQLSource(dialect Dialect, settings core.Settings) (*SQLSource, error) {
	settings = settings.WithDefaults()
	if strings.TrimSpace(settings.Config.Query) == "" {
		return nil, errors.Newf(errors.ErrorTypeConfig, "%s source requires a query", dialect)
	}

	var (
		dsn string
		err error
	)
	switch dialect {
	case MySQL:
		dsn, err = mysqlDSN(settings)
	case Snowflake:
		dsn, err = snowflakeDSN(settings)
	}
	if err != nil {
		return nil, err
	}

	return &SQLSource{
		settings: settings,
		logger:   settings.Logger,
		dialect:  dialect,
		dsn:      dsn,
		wire:     settings.Env.Invariant(),
	}, nil
}

// mysqlDSN makes the driver return DATE and DATETIME as time.Time in the
// run's time zone.
func mysqlDSN(settings core.Settings) (string, error) {
	if settings.Config.DSN == "" {
		return "", errors.New(errors.ErrorTypeConfig, "mysql source requires a dsn")
	}
	cfg, err := mysql.ParseDSN(settings.Config.DSN)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse mysql dsn")
	}
	cfg.ParseTime = true
	if settings.Env.Location != nil {
		cfg.Loc = settings.Env.Location
	}
	return cfg.FormatDSN(), nil
}

// snowflakeDSN uses the dsn setting or builds one from the account
// properties.
func snowflakeDSN(settings core.Settings) (string, error) {
	if settings.Config.DSN != "" {
		return settings.Config.DSN, nil
	}
	cfg := &sf.Config{
		Account:   settings.Property("account", ""),
		User:      settings.Property("user", ""),
		Password:  settings.Property("password", ""),
		Database:  settings.Property("database", ""),
		Schema:    settings.Property("schema", ""),
		Warehouse: settings.Property("warehouse", ""),
		Role:      settings.Property("role", ""),
	}
	if cfg.Account == "" || cfg.User == "" {
		return "", errors.New(errors.ErrorTypeConfig, "snowflake source requires a dsn or properties.account and properties.user")
	}
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeConfig, "failed to build snowflake dsn")
	}
	return dsn, nil
}

// Open connects and starts the query.
func (s *SQLSource) Open(ctx context.Context) error {
	db, err := sql.Open(string(s.dialect), s.dsn)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to open database")
	}
	maxOpen := defaultMaxOpenConns
	if v := s.settings.Property("max_connections", ""); v != "" {
		if maxOpen, err = strconv.Atoi(v); err != nil || maxOpen <= 0 {
			_ = db.Close()
			return errors.Newf(errors.ErrorTypeConfig, "invalid max_connections %q", v)
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect").
			WithDetail("dialect", string(s.dialect))
	}
	s.db = db

	s.rows, err = db.QueryContext(ctx, s.settings.Config.Query)
	if err != nil {
		_ = db.Close()
		return errors.Wrap(err, errors.ErrorTypeQuery, "failed to execute query").
			WithDetail("query", s.settings.Config.Query)
	}

	types, err := s.rows.ColumnTypes()
	if err != nil {
		_ = s.Close(ctx)
		return errors.Wrap(err, errors.ErrorTypeQuery, "failed to read result columns")
	}
	cols := make([]models.Column, len(types))
	for i, ct := range types {
		_, scale, hasScale := ct.DecimalSize()
		cols[i] = models.NewColumn(ct.Name(), ScalarTypeOf(ct.DatabaseTypeName(), scale, hasScale))
	}
	s.header, err = models.NewHeader(core.DeclareTypes(cols, s.settings.Config.Columns)...)
	if err != nil {
		_ = s.Close(ctx)
		return errors.Wrap(err, errors.ErrorTypeData, "invalid result columns")
	}

	s.scan = make([]any, len(cols))
	s.logger.Info("sql source opened",
		zap.String("dialect", string(s.dialect)),
		zap.Int("columns", s.header.Len()))
	return nil
}

// ScalarTypeOf maps a driver type name to the column type it is read as.
// Fixed-point numbers without fractional digits are Int.
func ScalarTypeOf(name string, scale int64, hasScale bool) models.ScalarType {
	switch strings.ToUpper(name) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT":
		return models.Int
	case "FIXED", "NUMBER", "DECIMAL", "NUMERIC":
		if hasScale && scale == 0 {
			return models.Int
		}
		return models.Double
	case "FLOAT", "DOUBLE", "REAL":
		return models.Double
	case "BOOLEAN", "BOOL":
		return models.Boolean
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMP_LTZ", "TIMESTAMP_NTZ", "TIMESTAMP_TZ":
		return models.DateTime
	case "TIME":
		return models.Duration
	default:
		return models.String
	}
}

// Header returns the result columns.
func (s *SQLSource) Header() *models.Header {
	return s.header
}

// Read returns the next result row.
func (s *SQLSource) Read(ctx context.Context) ([]any, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read result row")
		}
		return nil, io.EOF
	}

	raw := make([]any, len(s.scan))
	for i := range raw {
		s.scan[i] = &raw[i]
	}
	if err := s.rows.Scan(s.scan...); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to scan result row")
	}
	s.rowsRead++

	values := make([]any, len(raw))
	for i, v := range raw {
		col := s.header.Column(i)
		env := s.settings.Env
		if col.Type != models.String {
			env = s.wire
		}
		if t, ok := v.(time.Time); ok && col.Type == models.Duration {
			// TIME values arrive on the zero date in the session zone.
			v = time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second +
				time.Duration(t.Nanosecond())
		}
		value, ok := conversion.Coerce(env, col.Type, v)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "cannot read %v as %s", v, col.Type).
				WithDetail("row", s.rowsRead).
				WithDetail("column", col.Name)
		}
		values[i] = value
	}
	return values, nil
}

// Close ends the query and closes the database handle.
func (s *SQLSource) Close(ctx context.Context) error {
	var err error
	if s.rows != nil {
		err = s.rows.Close()
		s.rows = nil
	}
	if s.db != nil {
		if cerr := s.db.Close(); err == nil {
			err = cerr
		}
		s.db = nil
	}
	s.logger.Debug("sql source closed", zap.Int64("rows", s.rowsRead))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to close database")
	}
	return nil
}
