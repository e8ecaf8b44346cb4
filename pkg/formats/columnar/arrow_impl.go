package columnar

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// arrowWriter implements Writer for Arrow format
type arrowWriter struct {
	columns        []outputColumn
	fileWriter     *ipc.FileWriter
	recordBuilder  *array.RecordBuilder
	recordsWritten int64
}

func newArrowWriter(w io.Writer, config WriterConfig) (*arrowWriter, error) {
	columns := outputColumns(config.Header, config.Annotations)
	schema := arrowSchema(columns)
	pool := memory.NewGoAllocator()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow writer: %w", err)
	}

	return &arrowWriter{
		columns:       columns,
		fileWriter:    fw,
		recordBuilder: array.NewRecordBuilder(pool, schema),
	}, nil
}

func (aw *arrowWriter) Write(rows []*models.Row) error {
	if len(rows) == 0 {
		return nil
	}
	record, err := buildRecord(aw.recordBuilder, aw.columns, rows)
	if err != nil {
		return err
	}
	defer record.Release()

	if err := aw.fileWriter.Write(record); err != nil {
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	aw.recordsWritten += record.NumRows()
	return nil
}

func (aw *arrowWriter) Close() error {
	defer aw.recordBuilder.Release()
	if err := aw.fileWriter.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}

func (aw *arrowWriter) Format() Format {
	return Arrow
}

func (aw *arrowWriter) RowsWritten() int64 {
	return aw.recordsWritten
}

func readArrow(data []byte) (*Table, error) {
	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}
	defer reader.Close()

	table, err := newTable(reader.Schema())
	if err != nil {
		return nil, err
	}
	for i := 0; i < reader.NumRecords(); i++ {
		record, err := reader.Record(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record batch %d: %w", i, err)
		}
		table.appendRecord(record)
	}
	return table, nil
}

// Schema conversion helpers

func arrowSchema(columns []outputColumn) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.name, Type: arrowType(c.typ), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t models.ScalarType) arrow.DataType {
	switch t {
	case models.Int:
		return arrow.PrimitiveTypes.Int32
	case models.DateTime:
		return arrow.FixedWidthTypes.Timestamp_us
	case models.Boolean:
		return arrow.FixedWidthTypes.Boolean
	case models.Double:
		return arrow.PrimitiveTypes.Float64
	case models.Duration:
		return arrow.PrimitiveTypes.Int64
	default:
		return arrow.BinaryTypes.String
	}
}

func scalarTypeOf(dt arrow.DataType) (models.ScalarType, bool) {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return models.String, true
	case arrow.INT32:
		return models.Int, true
	case arrow.TIMESTAMP:
		return models.DateTime, true
	case arrow.BOOL:
		return models.Boolean, true
	case arrow.FLOAT64:
		return models.Double, true
	case arrow.INT64:
		return models.Duration, true
	default:
		return 0, false
	}
}

func buildRecord(b *array.RecordBuilder, columns []outputColumn, rows []*models.Row) (arrow.Record, error) {
	if err := checkRows(columns, rows); err != nil {
		return nil, err
	}
	for i, col := range columns {
		field := b.Field(i)
		for _, row := range rows {
			appendArrowValue(field, col.cellValue(row))
		}
	}
	return b.NewRecord(), nil
}

// appendArrowValue appends a value already checked against the column
// type.
func appendArrowValue(b array.Builder, value any) {
	switch builder := b.(type) {
	case *array.StringBuilder:
		if v, ok := value.(string); ok {
			builder.Append(v)
			return
		}
	case *array.Int32Builder:
		if v, ok := value.(int32); ok {
			builder.Append(v)
			return
		}
	case *array.TimestampBuilder:
		if v, ok := value.(time.Time); ok {
			builder.Append(arrow.Timestamp(v.UnixMicro()))
			return
		}
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			builder.Append(v)
			return
		}
	case *array.Float64Builder:
		if v, ok := value.(float64); ok {
			builder.Append(v)
			return
		}
	case *array.Int64Builder:
		if v, ok := value.(time.Duration); ok {
			builder.Append(int64(v))
			return
		}
	}
	b.AppendNull()
}

func newTable(schema *arrow.Schema) (*Table, error) {
	cols := make([]models.Column, schema.NumFields())
	for i, f := range schema.Fields() {
		t, ok := scalarTypeOf(f.Type)
		if !ok {
			return nil, fmt.Errorf("field %q has unsupported type %s", f.Name, f.Type)
		}
		cols[i] = models.NewColumn(f.Name, t)
	}
	header, err := models.NewHeader(cols...)
	if err != nil {
		return nil, err
	}
	return &Table{Header: header}, nil
}

func (t *Table) appendRecord(record arrow.Record) {
	for r := 0; r < int(record.NumRows()); r++ {
		row := make([]any, record.NumCols())
		for c := range row {
			row[c] = arrowValue(record.Column(c), r)
		}
		t.Rows = append(t.Rows, row)
	}
}

func arrowValue(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *array.String:
		return c.Value(i)
	case *array.LargeString:
		return c.Value(i)
	case *array.Int32:
		return c.Value(i)
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(i).ToTime(unit)
	case *array.Boolean:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.Int64:
		return time.Duration(c.Value(i))
	default:
		return nil
	}
}
