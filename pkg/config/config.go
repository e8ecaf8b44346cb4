package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/culture"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// Config is the complete description of one conversion run.
type Config struct {
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version"`

	// Source and Destination select the connectors rows are read from and
	// written to.
	Source      ConnectorConfig `yaml:"source" json:"source"`
	Destination ConnectorConfig `yaml:"destination" json:"destination"`

	// Conversions are applied to every row in order. A conversion may use
	// a column created by an earlier one.
	Conversions []ConversionConfig `yaml:"conversions" json:"conversions"`

	// Locale selects the culture used to read and render text values.
	Locale string `yaml:"locale" json:"locale"`
	// TimeZone is the IANA zone naive date-times are read in.
	TimeZone string `yaml:"time_zone" json:"time_zone"`

	Pipeline      PipelineConfig      `yaml:"pipeline" json:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ConnectorConfig configures a source or a destination.
type ConnectorConfig struct {
	// Type is the registered connector name (csv, json, postgresql, ...).
	Type string `yaml:"type" json:"type"`
	// Path is the file a file connector reads or writes.
	Path string `yaml:"path" json:"path"`
	// DSN is the connection string of a database source.
	DSN string `yaml:"dsn" json:"dsn"`
	// Query selects the rows of a database source.
	Query string `yaml:"query" json:"query"`
	// Columns types the fields of a text source. When empty, a CSV header
	// of "name:Type" cells or all-String columns are used.
	Columns []models.Column `yaml:"columns,omitempty" json:"columns,omitempty"`
	// Compression is none, auto, gzip, zstd, s2, snappy or lz4. auto
	// picks the codec from the file extension.
	Compression string `yaml:"compression" json:"compression"`
	// Delimiter separates CSV fields.
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// HasHeader reports whether the first CSV line names the columns.
	HasHeader bool `yaml:"has_header" json:"has_header"`
	// Annotations makes typed destinations write a companion text column
	// with the fallback annotation of every cell.
	Annotations bool `yaml:"annotations" json:"annotations"`
	// Properties holds connector specific settings.
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// ConversionConfig is one column conversion.
type ConversionConfig struct {
	Column         string `yaml:"column" json:"column"`
	ConvertTo      string `yaml:"convert_to" json:"convert_to"`
	NewColumnName  string `yaml:"new_column_name" json:"new_column_name"`
	ExceptionValue string `yaml:"exception_value" json:"exception_value"`
}

// Arguments returns the operator arguments of c.
func (c ConversionConfig) Arguments() conversion.Arguments {
	return conversion.Arguments{
		Column:         c.Column,
		ConvertTo:      c.ConvertTo,
		NewColumnName:  c.NewColumnName,
		ExceptionValue: c.ExceptionValue,
	}
}

// PipelineConfig controls batching and concurrency.
type PipelineConfig struct {
	// BatchSize is the number of rows read before conversion
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// Workers is the number of goroutines converting a batch
	Workers int `yaml:"workers" json:"workers"`
	// Timeout bounds the whole run; zero means no limit
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format"`
	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090"
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
	// EnableTracing exports spans to stdout
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// NewDefault returns a configuration with every default applied.
//
// Example:
//
//	cfg := config.NewDefault()
//	cfg.Source = config.ConnectorConfig{Type: "csv", Path: "in.csv", HasHeader: true}
func NewDefault() *Config {
	return &Config{
		Version:  "1",
		Locale:   culture.InvariantName,
		TimeZone: "UTC",
		Source: ConnectorConfig{
			Compression: "auto",
			Delimiter:   ",",
			HasHeader:   true,
		},
		Destination: ConnectorConfig{
			Compression: "auto",
			Delimiter:   ",",
			HasHeader:   true,
		},
		Pipeline: PipelineConfig{
			BatchSize: 1000,
			Workers:   runtime.NumCPU(),
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogFormat:         "json",
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks the configuration before any connector is opened.
// Conversions are checked for shape only; type compatibility needs the
// source header and is checked when operators are built.
func (c *Config) Validate() error {
	if c.Source.Type == "" {
		return configError("source.type is required")
	}
	if c.Destination.Type == "" {
		return configError("destination.type is required")
	}
	if len(c.Conversions) == 0 {
		return configError("at least one conversion is required")
	}
	for i, conv := range c.Conversions {
		if strings.TrimSpace(conv.Column) == "" {
			return configError("conversions[%d].column is required", i)
		}
		if _, err := models.ParseScalarType(conv.ConvertTo); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid conversion").
				WithDetail("index", i)
		}
	}
	for _, col := range c.Source.Columns {
		if col.Name == "" {
			return configError("source.columns entries need a name")
		}
	}
	if _, err := culture.Lookup(c.Locale); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid locale")
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid time_zone")
		}
	}
	if c.Pipeline.BatchSize <= 0 {
		return configError("pipeline.batch_size must be positive")
	}
	if c.Pipeline.Workers < 0 {
		return configError("pipeline.workers cannot be negative")
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return configError("observability.tracing_sample_rate must be between 0 and 1")
	}
	return nil
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (p *PipelineConfig) GetWorkers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}

// Environment resolves the locale and time zone of the run.
func (c *Config) Environment() (*conversion.Environment, error) {
	return conversion.NewEnvironment(c.Locale, c.TimeZone)
}

func configError(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrorTypeConfig, format, args...)
}
