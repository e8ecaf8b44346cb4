// Package json encodes rows as JSON objects with goccy/go-json, either one
// object per line or as a single array.
//
// Values are written in their natural JSON form: strings, numbers and
// booleans as such, DateTime as RFC 3339 text, Duration as
// [-][d.]hh:mm:ss[.fffffff] text. Doubles that JSON cannot hold (NaN and
// the infinities) are written as the strings "NaN", "Infinity" and
// "-Infinity". Absent cells are null.
package json

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/colconv/pkg/models"
	"github.com/ajitpratap0/colconv/pkg/pool"
	"github.com/ajitpratap0/colconv/pkg/timespan"
)

// AnnotationSuffix names the annotation key written after a column.
const AnnotationSuffix = "_annotation"

var bufferPool = pool.New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// Options configures an Encoder.
type Options struct {
	// Array wraps the objects in a JSON array instead of writing one per
	// line.
	Array bool
	// Annotations adds a "<column>_annotation" key after every column.
	Annotations bool
}

// Encoder streams rows of one header.
type Encoder struct {
	w       io.Writer
	opts    Options
	keys    [][]byte // encoded `"name":` of each column
	annKeys [][]byte
	count   int64
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer, header *models.Header, opts Options) *Encoder {
	e := &Encoder{w: w, opts: opts}
	for i := 0; i < header.Len(); i++ {
		name := header.Column(i).Name
		e.keys = append(e.keys, encodeKey(name))
		if opts.Annotations {
			e.annKeys = append(e.annKeys, encodeKey(name+AnnotationSuffix))
		}
	}
	return e
}

func encodeKey(name string) []byte {
	b, _ := gojson.Marshal(name)
	return append(b, ':')
}

// Encode writes a batch of rows.
func (e *Encoder) Encode(rows []*models.Row) error {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	for _, row := range rows {
		n := atomic.AddInt64(&e.count, 1)
		if e.opts.Array {
			if n == 1 {
				buf.WriteByte('[')
			} else {
				buf.WriteByte(',')
			}
		}
		if err := e.appendRow(buf, row); err != nil {
			return err
		}
		if !e.opts.Array {
			buf.WriteByte('\n')
		}
	}
	_, err := e.w.Write(buf.Bytes())
	return err
}

func (e *Encoder) appendRow(buf *bytes.Buffer, row *models.Row) error {
	buf.WriteByte('{')
	for i, key := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		cell := row.Cell(i)
		buf.Write(key)
		if err := AppendValue(buf, cell.Value); err != nil {
			return err
		}
		if e.opts.Annotations {
			buf.WriteByte(',')
			buf.Write(e.annKeys[i])
			if cell.Annotation == "" {
				buf.WriteString("null")
			} else if err := AppendValue(buf, cell.Annotation); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

// Close terminates the array. An array with no rows is written as [].
// Close does not close the underlying writer.
func (e *Encoder) Close() error {
	if !e.opts.Array {
		return nil
	}
	end := "]"
	if atomic.LoadInt64(&e.count) == 0 {
		end = "[]"
	}
	_, err := io.WriteString(e.w, end)
	return err
}

// Count returns the number of rows encoded.
func (e *Encoder) Count() int64 {
	return atomic.LoadInt64(&e.count)
}

// AppendValue writes the JSON form of a cell value.
func AppendValue(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case int32:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case float64:
		switch {
		case math.IsNaN(x):
			buf.WriteString(`"NaN"`)
		case math.IsInf(x, 1):
			buf.WriteString(`"Infinity"`)
		case math.IsInf(x, -1):
			buf.WriteString(`"-Infinity"`)
		default:
			buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
	case time.Time:
		return appendString(buf, x.Format(time.RFC3339Nano))
	case time.Duration:
		return appendString(buf, timespan.Format(x))
	case string:
		return appendString(buf, x)
	default:
		b, err := gojson.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

func appendString(buf *bytes.Buffer, s string) error {
	b, err := gojson.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
