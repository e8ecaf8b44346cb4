package columnar

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// Avro names must match [A-Za-z_][A-Za-z0-9_]*. Column names that do not
// are sanitized; the original name and type are kept in the
// "colconv.column" and "colconv.type" field attributes.
const (
	avroColumnAttr = "colconv.column"
	avroTypeAttr   = "colconv.type"
)

var avroInvalidName = regexp.MustCompile(`[^A-Za-z0-9_]`)

// avroWriter implements Writer for Avro format
type avroWriter struct {
	columns        []outputColumn
	fields         []avroField
	ocfWriter      *goavro.OCFWriter
	recordsWritten int64
}

type avroField struct {
	name   string
	branch string // union branch of non-null values
}

func newAvroWriter(w io.Writer, config WriterConfig) (*avroWriter, error) {
	compression, err := getAvroCompression(config.Codec)
	if err != nil {
		return nil, err
	}

	columns := outputColumns(config.Header, config.Annotations)
	schema, fields := avroSchema(columns)

	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create Avro codec: %w", err)
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Avro writer: %w", err)
	}

	return &avroWriter{columns: columns, fields: fields, ocfWriter: ocfWriter}, nil
}

func (aw *avroWriter) Write(rows []*models.Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := checkRows(aw.columns, rows); err != nil {
		return err
	}

	natives := make([]interface{}, len(rows))
	for r, row := range rows {
		native := make(map[string]interface{}, len(aw.columns))
		for i, col := range aw.columns {
			native[aw.fields[i].name] = avroValue(aw.fields[i].branch, col.cellValue(row))
		}
		natives[r] = native
	}

	// One Append call is one OCF block.
	if err := aw.ocfWriter.Append(natives); err != nil {
		return fmt.Errorf("failed to write Avro block: %w", err)
	}
	aw.recordsWritten += int64(len(rows))
	return nil
}

// Close is a no-op: every Append already wrote a complete block.
func (aw *avroWriter) Close() error {
	return nil
}

func (aw *avroWriter) Format() Format {
	return Avro
}

func (aw *avroWriter) RowsWritten() int64 {
	return aw.recordsWritten
}

func avroValue(branch string, v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Duration:
		return goavro.Union(branch, int64(x))
	default:
		return goavro.Union(branch, x)
	}
}

func readAvro(data []byte) (*Table, error) {
	ocfReader, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create Avro reader: %w", err)
	}

	cols, names, err := columnsFromAvroSchema(ocfReader.Codec().Schema())
	if err != nil {
		return nil, err
	}
	header, err := models.NewHeader(cols...)
	if err != nil {
		return nil, err
	}
	table := &Table{Header: header}

	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read Avro record: %w", err)
		}
		record, ok := datum.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected Avro datum %T", datum)
		}
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = fromAvro(c.Type, record[names[i]])
		}
		table.Rows = append(table.Rows, row)
	}
	if err := ocfReader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read Avro file: %w", err)
	}
	return table, nil
}

// fromAvro unwraps a union value into the Go type of t.
func fromAvro(t models.ScalarType, v any) any {
	if m, ok := v.(map[string]interface{}); ok {
		for _, inner := range m {
			v = inner
		}
	}
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		if t == models.Duration {
			return time.Duration(x)
		}
		return x
	case time.Time:
		return x.UTC()
	default:
		return x
	}
}

// Schema conversion helpers

func avroSchema(columns []outputColumn) (string, []avroField) {
	fields := make([]avroField, len(columns))
	specs := make([]map[string]interface{}, len(columns))
	used := make(map[string]bool, len(columns))

	for i, c := range columns {
		name := avroName(c.name, i, used)
		typ, branch := avroType(c.typ)
		fields[i] = avroField{name: name, branch: branch}
		specs[i] = map[string]interface{}{
			"name":         name,
			"type":         []interface{}{"null", typ},
			"default":      nil,
			avroColumnAttr: c.name,
			avroTypeAttr:   c.typ.String(),
		}
	}

	schema := map[string]interface{}{
		"type":   "record",
		"name":   "Row",
		"fields": specs,
	}
	b, _ := gojson.Marshal(schema)
	return string(b), fields
}

func avroName(name string, i int, used map[string]bool) string {
	n := avroInvalidName.ReplaceAllString(name, "_")
	if n == "" || (n[0] >= '0' && n[0] <= '9') {
		n = "_" + n
	}
	if used[n] {
		n = n + "_" + strconv.Itoa(i)
	}
	used[n] = true
	return n
}

func avroType(t models.ScalarType) (typ interface{}, branch string) {
	switch t {
	case models.Int:
		return "int", "int"
	case models.DateTime:
		return map[string]interface{}{"type": "long", "logicalType": "timestamp-micros"}, "long.timestamp-micros"
	case models.Boolean:
		return "boolean", "boolean"
	case models.Double:
		return "double", "double"
	case models.Duration:
		return "long", "long"
	default:
		return "string", "string"
	}
}

func columnsFromAvroSchema(schema string) ([]models.Column, []string, error) {
	var parsed struct {
		Fields []map[string]interface{} `json:"fields"`
	}
	if err := gojson.Unmarshal([]byte(schema), &parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse Avro schema: %w", err)
	}

	cols := make([]models.Column, len(parsed.Fields))
	names := make([]string, len(parsed.Fields))
	for i, f := range parsed.Fields {
		name, _ := f["name"].(string)
		names[i] = name

		column := name
		if s, ok := f[avroColumnAttr].(string); ok && s != "" {
			column = s
		}
		t, err := avroScalarType(f)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", name, err)
		}
		cols[i] = models.NewColumn(column, t)
	}
	return cols, names, nil
}

func avroScalarType(field map[string]interface{}) (models.ScalarType, error) {
	if s, ok := field[avroTypeAttr].(string); ok {
		return models.ParseScalarType(s)
	}
	typ := field["type"]
	if union, ok := typ.([]interface{}); ok {
		for _, branch := range union {
			if branch != "null" {
				typ = branch
				break
			}
		}
	}
	if m, ok := typ.(map[string]interface{}); ok {
		if lt, _ := m["logicalType"].(string); strings.HasPrefix(lt, "timestamp-") {
			return models.DateTime, nil
		}
		typ = m["type"]
	}
	switch typ {
	case "string":
		return models.String, nil
	case "int":
		return models.Int, nil
	case "boolean":
		return models.Boolean, nil
	case "double":
		return models.Double, nil
	case "long":
		return models.Duration, nil
	default:
		return 0, fmt.Errorf("unsupported Avro type %v", typ)
	}
}

func getAvroCompression(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return goavro.CompressionSnappyLabel, nil
	case "deflate":
		return goavro.CompressionDeflateLabel, nil
	case "none", "null":
		return goavro.CompressionNullLabel, nil
	default:
		return "", fmt.Errorf("unsupported avro codec %q", name)
	}
}
