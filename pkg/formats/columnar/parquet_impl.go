package columnar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// parquetWriter implements Writer for Parquet format. Every batch becomes
// one row group.
type parquetWriter struct {
	columns        []outputColumn
	fileWriter     *pqarrow.FileWriter
	recordBuilder  *array.RecordBuilder
	recordsWritten int64
}

func newParquetWriter(w io.Writer, config WriterConfig) (*parquetWriter, error) {
	codec, err := getParquetCompression(config.Codec)
	if err != nil {
		return nil, err
	}

	columns := outputColumns(config.Header, config.Annotations)
	schema := arrowSchema(columns)
	pool := memory.NewGoAllocator()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(true),
		parquet.WithAllocator(pool),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(pool),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet writer: %w", err)
	}

	return &parquetWriter{
		columns:       columns,
		fileWriter:    fw,
		recordBuilder: array.NewRecordBuilder(pool, schema),
	}, nil
}

func (pw *parquetWriter) Write(rows []*models.Row) error {
	if len(rows) == 0 {
		return nil
	}
	record, err := buildRecord(pw.recordBuilder, pw.columns, rows)
	if err != nil {
		return err
	}
	defer record.Release()

	if err := pw.fileWriter.Write(record); err != nil {
		return fmt.Errorf("failed to write row group: %w", err)
	}
	pw.recordsWritten += record.NumRows()
	return nil
}

func (pw *parquetWriter) Close() error {
	defer pw.recordBuilder.Release()
	if err := pw.fileWriter.Close(); err != nil {
		return fmt.Errorf("failed to close Parquet writer: %w", err)
	}
	return nil
}

func (pw *parquetWriter) Format() Format {
	return Parquet
}

func (pw *parquetWriter) RowsWritten() int64 {
	return pw.recordsWritten
}

func readParquet(data []byte) (*Table, error) {
	fr, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet reader: %w", err)
	}
	defer fr.Close()

	pool := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{BatchSize: 4096}, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to get Arrow schema: %w", err)
	}
	table, err := newTable(schema)
	if err != nil {
		return nil, err
	}

	rr, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read row groups: %w", err)
	}
	defer rr.Release()

	for rr.Next() {
		table.appendRecord(rr.Record())
	}
	if err := rr.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read row groups: %w", err)
	}
	return table, nil
}

func getParquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet codec %q", name)
	}
}
