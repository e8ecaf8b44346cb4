package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/errors"
)

// envPrefix scopes the environment overrides, e.g. COLCONV_LOCALE or
// COLCONV_PIPELINE_WORKERS.
const envPrefix = "COLCONV"

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"locale":          "locale",
	"time-zone":       "time_zone",
	"batch-size":      "pipeline.batch_size",
	"workers":         "pipeline.workers",
	"timeout":         "pipeline.timeout",
	"log-level":       "observability.log_level",
	"log-format":      "observability.log_format",
	"metrics-addr":    "observability.metrics_addr",
	"trace":           "observability.enable_tracing",
	"source":          "source.path",
	"source-type":     "source.type",
	"destination":     "destination.path",
	"dest-type":       "destination.type",
	"annotations":     "destination.annotations",
	"compression":     "destination.compression",
	"delimiter":       "source.delimiter",
	"no-header":       "source.no_header",
	"column":          "conversion.column",
	"to":              "conversion.convert_to",
	"name":            "conversion.new_column_name",
	"exception-value": "conversion.exception_value",
}

// newViper binds flags and COLCONV_* variables.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for flag, key := range flagKeys {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// resolveConfig loads the configuration file, when one is given, and
// applies environment and flag overrides. A conversion given on the
// command line is appended to the configured ones.
func resolveConfig(path string, v *viper.Viper) (*config.Config, error) {
	cfg := config.NewDefault()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load config").
				WithDetail("path", path)
		}
		cfg = loaded
	}

	setString(v, "locale", &cfg.Locale)
	setString(v, "time_zone", &cfg.TimeZone)
	if v.IsSet("pipeline.batch_size") {
		cfg.Pipeline.BatchSize = v.GetInt("pipeline.batch_size")
	}
	if v.IsSet("pipeline.workers") {
		cfg.Pipeline.Workers = v.GetInt("pipeline.workers")
	}
	if v.IsSet("pipeline.timeout") {
		cfg.Pipeline.Timeout = v.GetDuration("pipeline.timeout")
	}
	setString(v, "observability.log_level", &cfg.Observability.LogLevel)
	setString(v, "observability.log_format", &cfg.Observability.LogFormat)
	setString(v, "observability.metrics_addr", &cfg.Observability.MetricsAddr)
	if v.IsSet("observability.enable_tracing") {
		cfg.Observability.EnableTracing = v.GetBool("observability.enable_tracing")
	}

	setString(v, "source.path", &cfg.Source.Path)
	setString(v, "source.type", &cfg.Source.Type)
	setString(v, "source.delimiter", &cfg.Source.Delimiter)
	if v.IsSet("source.no_header") {
		cfg.Source.HasHeader = !v.GetBool("source.no_header")
	}
	setString(v, "destination.path", &cfg.Destination.Path)
	setString(v, "destination.type", &cfg.Destination.Type)
	setString(v, "destination.compression", &cfg.Destination.Compression)
	if v.IsSet("destination.annotations") {
		cfg.Destination.Annotations = v.GetBool("destination.annotations")
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = typeFromPath(cfg.Source.Path)
	}
	if cfg.Destination.Type == "" {
		cfg.Destination.Type = typeFromPath(cfg.Destination.Path)
	}

	if column := v.GetString("conversion.column"); column != "" {
		cfg.Conversions = append(cfg.Conversions, config.ConversionConfig{
			Column:         column,
			ConvertTo:      v.GetString("conversion.convert_to"),
			NewColumnName:  v.GetString("conversion.new_column_name"),
			ExceptionValue: v.GetString("conversion.exception_value"),
		})
	}
	return cfg, nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

// typeFromPath picks a file connector from the extension, ignoring a
// trailing compression extension.
func typeFromPath(path string) string {
	p := strings.ToLower(path)
	for _, ext := range []string{".gz", ".zst", ".zstd", ".sz", ".s2", ".snappy", ".lz4"} {
		p = strings.TrimSuffix(p, ext)
	}
	switch filepath.Ext(p) {
	case ".csv", ".tsv", ".txt":
		return "csv"
	case ".json", ".jsonl", ".ndjson":
		return "json"
	case ".parquet":
		return "parquet"
	case ".arrow", ".feather":
		return "arrow"
	case ".avro":
		return "avro"
	default:
		return ""
	}
}
