// Package columnar writes and reads typed tables in Arrow IPC, Parquet and
// Avro container files.
//
// Column types map onto each format as follows:
//
//	String   -> utf8 / string
//	Int      -> int32 / int
//	DateTime -> timestamp (microseconds, UTC) / long timestamp-micros
//	Boolean  -> bool / boolean
//	Double   -> float64 / double
//	Duration -> int64 nanoseconds / long
//
// Every column is nullable. When annotations are enabled each column is
// followed by a nullable string column named "<column>_annotation" that
// holds the display annotation of the cell.
package columnar

import (
	"fmt"
	"io"
	"strings"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// Format represents a columnar storage format
type Format string

const (
	// Parquet is Apache Parquet format
	Parquet Format = "parquet"
	// Arrow is the Apache Arrow IPC file format
	Arrow Format = "arrow"
	// Avro is an Apache Avro object container file
	Avro Format = "avro"
)

// Formats lists the supported formats.
var Formats = []Format{Arrow, Parquet, Avro}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported columnar format: %s", name)
}

// AnnotationSuffix is appended to a column name to name its annotation
// column.
const AnnotationSuffix = "_annotation"

// Writer writes rows of one header into a columnar file.
type Writer interface {
	// Write appends a batch of rows.
	Write(rows []*models.Row) error
	// Close writes the file footer. It does not close the underlying
	// io.Writer.
	Close() error
	// Format returns the columnar format
	Format() Format
	// RowsWritten returns rows written
	RowsWritten() int64
}

// WriterConfig configures columnar writers
type WriterConfig struct {
	Format Format
	// Header is the schema of every row passed to Write.
	Header *models.Header
	// Annotations adds an annotation column after every column.
	Annotations bool
	// Codec is the block compression inside the file: snappy (default),
	// zstd, gzip or none for Parquet; snappy (default), deflate or none for
	// Avro. Arrow files are written uncompressed.
	Codec string
}

// NewWriter creates a new columnar writer
func NewWriter(w io.Writer, config WriterConfig) (Writer, error) {
	if config.Header == nil {
		return nil, fmt.Errorf("header is required for %s writer", config.Format)
	}

	switch config.Format {
	case Parquet:
		return newParquetWriter(w, config)
	case Arrow:
		return newArrowWriter(w, config)
	case Avro:
		return newAvroWriter(w, config)
	default:
		return nil, fmt.Errorf("unsupported columnar format: %s", config.Format)
	}
}

// Table is the content of a columnar file.
type Table struct {
	Header *models.Header
	// Rows hold one value per column, nil when absent.
	Rows [][]any
}

// Read decodes a whole file. Arrow and Parquet need random access, so the
// file is held in memory.
func Read(data []byte, format Format) (*Table, error) {
	switch format {
	case Parquet:
		return readParquet(data)
	case Arrow:
		return readArrow(data)
	case Avro:
		return readAvro(data)
	default:
		return nil, fmt.Errorf("unsupported columnar format: %s", format)
	}
}

// FormatInfo provides information about columnar formats
type FormatInfo struct {
	Format        Format
	Name          string
	Description   string
	FileExtension string
	MIMEType      string
}

// GetFormatInfo returns information about a columnar format
func GetFormatInfo(format Format) *FormatInfo {
	switch format {
	case Parquet:
		return &FormatInfo{
			Format:        Parquet,
			Name:          "Apache Parquet",
			Description:   "Columnar storage format optimized for analytics",
			FileExtension: ".parquet",
			MIMEType:      "application/x-parquet",
		}
	case Arrow:
		return &FormatInfo{
			Format:        Arrow,
			Name:          "Apache Arrow",
			Description:   "Arrow IPC file format",
			FileExtension: ".arrow",
			MIMEType:      "application/vnd.apache.arrow.file",
		}
	case Avro:
		return &FormatInfo{
			Format:        Avro,
			Name:          "Apache Avro",
			Description:   "Row-oriented object container file",
			FileExtension: ".avro",
			MIMEType:      "application/avro",
		}
	default:
		return nil
	}
}

// outputColumn is one written column.
type outputColumn struct {
	name       string
	typ        models.ScalarType
	source     int
	annotation bool
}

// outputColumns lists every header column, each followed by its annotation
// column when enabled.
func outputColumns(h *models.Header, annotations bool) []outputColumn {
	out := make([]outputColumn, 0, h.Len()*2)
	for i := 0; i < h.Len(); i++ {
		c := h.Column(i)
		out = append(out, outputColumn{name: c.Name, typ: c.Type, source: i})
		if annotations {
			out = append(out, outputColumn{
				name:       c.Name + AnnotationSuffix,
				typ:        models.String,
				source:     i,
				annotation: true,
			})
		}
	}
	return out
}

// cellValue returns the value written for col, nil when absent.
func (col outputColumn) cellValue(row *models.Row) any {
	cell := row.Cell(col.source)
	if !col.annotation {
		return cell.Value
	}
	if cell.Annotation == "" {
		return nil
	}
	return cell.Annotation
}

// checkRows rejects a batch holding a value of the wrong Go type, before
// anything is written.
func checkRows(columns []outputColumn, rows []*models.Row) error {
	for r, row := range rows {
		for _, col := range columns {
			if v := col.cellValue(row); !models.Conforms(col.typ, v) {
				return fmt.Errorf("row %d column %q: unexpected value %T for %s", r, col.name, v, col.typ)
			}
		}
	}
	return nil
}
