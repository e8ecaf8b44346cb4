// Package colconv converts table columns between typed scalar values.
//
// A conversion reads one column of a row, converts its value to another
// scalar type and appends the result as a new column. Values that cannot
// be converted become the designated invalid value of the target type and
// carry a fallback annotation, so a run never stops on bad data.
//
// # Scalar Types
//
// Six types are supported: String, Int, DateTime, Boolean, Double and
// Duration. The compatibility matrix in pkg/conversion decides which pairs
// convert; run "colconv matrix" to print it.
//
// # Quick Start
//
// Convert a column of a CSV file and write Parquet:
//
//	colconv run --source orders.csv --destination orders.parquet \
//	    --column amount --to Double --locale de-DE
//
// The same run from Go:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/colconv/internal/pipeline"
//	    "github.com/ajitpratap0/colconv/pkg/config"
//	)
//
//	cfg := config.NewDefault()
//	cfg.Locale = "de-DE"
//	cfg.Source = config.ConnectorConfig{Type: "csv", Path: "orders.csv", HasHeader: true}
//	cfg.Destination = config.ConnectorConfig{Type: "parquet", Path: "orders.parquet"}
//	cfg.Conversions = []config.ConversionConfig{{Column: "amount", ConvertTo: "Double"}}
//
//	p, err := pipeline.FromConfig(cfg, logger)
//	result, err := p.Run(context.Background())
//
// # Key Packages
//
//	pkg/conversion   - Conversion rules, text parsing and the row operator
//	pkg/models       - Scalar types, columns, headers and cells
//	pkg/culture      - Number and date formats per locale
//	pkg/connector    - Sources and destinations (csv, json, arrow, parquet, avro, SQL)
//	pkg/formats      - Arrow, Parquet and Avro codecs
//	pkg/config       - YAML run configuration
//	pkg/errors       - Typed errors
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus metrics
//	internal/pipeline - Batched source to destination runs
//
// # Configuration
//
// A run is described by a YAML file, command line flags and COLCONV_*
// environment variables, applied in that order. A .env file in the
// working directory is loaded first.
package colconv
