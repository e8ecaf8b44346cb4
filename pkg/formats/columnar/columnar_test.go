package columnar

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colconv/pkg/models"
)

func sampleRows(t *testing.T) (*models.Header, []*models.Row) {
	t.Helper()
	header := models.MustHeader(
		models.NewColumn("name", models.String),
		models.NewColumn("amount (as Int)", models.Int),
		models.NewColumn("booked_at", models.DateTime),
		models.NewColumn("paid", models.Boolean),
		models.NewColumn("ratio", models.Double),
		models.NewColumn("elapsed", models.Duration),
	)

	booked := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)
	first := models.NewRow(header)
	first.Load([]any{"alpha", int32(7), booked, true, 0.25, 90 * time.Minute})

	second := models.NewRow(header)
	second.Load([]any{"beta", nil, nil, nil, nil, nil})
	second.Set(header.Column(1), models.IntSentinel, "N/A")

	return header, []*models.Row{first, second}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			header, rows := sampleRows(t)

			var buf bytes.Buffer
			w, err := NewWriter(&buf, WriterConfig{Format: format, Header: header})
			require.NoError(t, err)
			require.NoError(t, w.Write(rows[:1]))
			require.NoError(t, w.Write(rows[1:]))
			require.NoError(t, w.Close())
			assert.Equal(t, int64(2), w.RowsWritten())
			assert.Equal(t, format, w.Format())

			table, err := Read(buf.Bytes(), format)
			require.NoError(t, err)
			assert.Equal(t, header.Columns(), table.Header.Columns())
			require.Len(t, table.Rows, 2)

			assert.Equal(t, "alpha", table.Rows[0][0])
			assert.Equal(t, int32(7), table.Rows[0][1])
			assert.True(t, time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC).Equal(table.Rows[0][2].(time.Time)))
			assert.Equal(t, true, table.Rows[0][3])
			assert.Equal(t, 0.25, table.Rows[0][4])
			assert.Equal(t, 90*time.Minute, table.Rows[0][5])

			assert.Equal(t, []any{"beta", models.IntSentinel, nil, nil, nil, nil}, table.Rows[1])
		})
	}
}

func TestAnnotationColumns(t *testing.T) {
	header, rows := sampleRows(t)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, WriterConfig{Format: Arrow, Header: header, Annotations: true})
	require.NoError(t, err)
	require.NoError(t, w.Write(rows))
	require.NoError(t, w.Close())

	table, err := Read(buf.Bytes(), Arrow)
	require.NoError(t, err)
	require.Equal(t, header.Len()*2, table.Header.Len())

	col, ok := table.Header.Lookup("amount (as Int)" + AnnotationSuffix)
	require.True(t, ok)
	assert.Equal(t, models.String, col.Type)

	i := table.Header.Index(col.Name)
	assert.Nil(t, table.Rows[0][i])
	assert.Equal(t, "N/A", table.Rows[1][i])
}

func TestWriteRejectsMistypedValues(t *testing.T) {
	header := models.MustHeader(models.NewColumn("n", models.Int))
	row := models.NewRow(header)
	row.Load([]any{"seven"})

	for _, format := range Formats {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, WriterConfig{Format: format, Header: header})
		require.NoError(t, err)
		assert.Error(t, w.Write([]*models.Row{row}), format)
	}
}

func TestParseFormatAndCodecs(t *testing.T) {
	f, err := ParseFormat(" Parquet ")
	require.NoError(t, err)
	assert.Equal(t, Parquet, f)
	_, err = ParseFormat("orc")
	assert.Error(t, err)

	header := models.MustHeader(models.NewColumn("n", models.Int))
	_, err = NewWriter(&bytes.Buffer{}, WriterConfig{Format: Parquet, Header: header, Codec: "lzma"})
	assert.Error(t, err)
	_, err = NewWriter(&bytes.Buffer{}, WriterConfig{Format: Avro, Header: header, Codec: "lzma"})
	assert.Error(t, err)
	_, err = NewWriter(&bytes.Buffer{}, WriterConfig{Format: Arrow})
	assert.Error(t, err)

	assert.Equal(t, ".parquet", GetFormatInfo(Parquet).FileExtension)
	assert.Nil(t, GetFormatInfo("orc"))
}

func TestAvroNames(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "amount__as_Int_", avroName("amount (as Int)", 0, used))
	assert.Equal(t, "_1st", avroName("1st", 1, used))
	assert.Equal(t, "amount__as_Int__2", avroName("amount [as Int]", 2, used))
}
