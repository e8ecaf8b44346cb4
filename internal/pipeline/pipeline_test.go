package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colconv/pkg/config"
	_ "github.com/ajitpratap0/colconv/pkg/connector/destinations"
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/metrics"
	"github.com/ajitpratap0/colconv/pkg/models"
	"github.com/ajitpratap0/colconv/pkg/testutil"
)

func amountSource(values ...string) *testutil.MemorySource {
	header := models.MustHeader(models.NewColumn("amount", models.String))
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	return testutil.NewMemorySource(header, rows...)
}

func TestChainedConversions(t *testing.T) {
	src := amountSource("5", "x", "0")
	dst := testutil.NewMemoryDestination()

	p := New(src, dst, []conversion.Arguments{
		{Column: "amount", ConvertTo: "Int", NewColumnName: "amount_int"},
		{Column: "amount_int", ConvertTo: "boolean"},
	}, Config{BatchSize: 2, Workers: 2},
		WithLogger(testutil.TestLogger(t)),
		WithMetrics(metrics.NewCollector("pipeline_test")),
		WithNames("memory", "memory"),
	)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()
	result, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.Column{
		models.NewColumn("amount", models.String),
		models.NewColumn("amount_int", models.Int),
		models.NewColumn("amount_int (as Boolean)", models.Boolean),
	}, dst.Header().Columns())

	assert.Equal(t, [][]any{
		{"5", int32(5), true},
		{"x", models.IntSentinel, true},
		{"0", int32(0), false},
	}, dst.Values())
	assert.Equal(t, "N/A", dst.Cells()[1][1].Annotation)
	assert.Empty(t, dst.Cells()[1][2].Annotation)

	assert.Equal(t, 2, dst.Batches())
	assert.Equal(t, int64(3), result.Rows)
	assert.Equal(t, int64(2), result.Batches)
	assert.Equal(t, int64(1), result.Failed())
	assert.Equal(t, []OperatorResult{
		{Name: "amount_int", Rows: 3, Failed: 1},
		{Name: "amount_int (as Boolean)", Rows: 3, Failed: 0},
	}, result.Operators())
	assert.NotEmpty(t, result.RunID)
	assert.True(t, src.Closed)
	assert.True(t, dst.Closed)
}

func TestOrderIsKeptAcrossWorkers(t *testing.T) {
	values := make([]string, 1000)
	for i := range values {
		values[i] = strconv.Itoa(i)
	}
	dst := testutil.NewMemoryDestination()
	p := New(amountSource(values...), dst,
		[]conversion.Arguments{{Column: "amount", ConvertTo: "Double", ExceptionValue: "bad"}},
		Config{BatchSize: 64, Workers: 8})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Rows)

	got := dst.Values()
	require.Len(t, got, 1000)
	for i, row := range got {
		assert.Equal(t, float64(i), row[1])
	}
}

func TestUnsupportedConversionStopsSetup(t *testing.T) {
	header := models.MustHeader(models.NewColumn("took", models.Duration))
	src := testutil.NewMemorySource(header, []any{time.Second})
	dst := testutil.NewMemoryDestination()

	_, err := New(src, dst, []conversion.Arguments{{Column: "took", ConvertTo: "Int"}}, Config{}).
		Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Nil(t, dst.Header(), "destination must not be opened")
	assert.True(t, src.Closed)
}

func TestUnknownColumn(t *testing.T) {
	_, err := New(amountSource("1"), testutil.NewMemoryDestination(),
		[]conversion.Arguments{{Column: "missing", ConvertTo: "Int"}}, Config{}).
		Run(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestConnectorErrors(t *testing.T) {
	convert := []conversion.Arguments{{Column: "amount", ConvertTo: "Int"}}

	t.Run("open", func(t *testing.T) {
		src := amountSource("1")
		src.OpenErr = errors.New(errors.ErrorTypeConnection, "refused")
		_, err := New(src, testutil.NewMemoryDestination(), convert, Config{}).Run(context.Background())
		assert.True(t, errors.IsType(err, errors.ErrorTypeConnection))
	})

	t.Run("read", func(t *testing.T) {
		src := amountSource("1", "2", "3")
		src.ReadErr = errors.New(errors.ErrorTypeData, "broken record")
		src.FailAt = 2
		dst := testutil.NewMemoryDestination()
		result, err := New(src, dst, convert, Config{BatchSize: 1}).Run(context.Background())
		assert.True(t, errors.IsType(err, errors.ErrorTypeData))
		assert.Equal(t, int64(2), result.Rows)
		assert.True(t, dst.Closed)
	})

	t.Run("write", func(t *testing.T) {
		dst := testutil.NewMemoryDestination()
		dst.WriteErr = errors.New(errors.ErrorTypeFile, "disk full")
		result, err := New(amountSource("1"), dst, convert, Config{}).Run(context.Background())
		assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
		assert.Zero(t, result.Rows)
	})

	t.Run("width", func(t *testing.T) {
		header := models.MustHeader(models.NewColumn("amount", models.String))
		src := testutil.NewMemorySource(header, []any{"1", "extra"})
		_, err := New(src, testutil.NewMemoryDestination(), convert, Config{}).Run(context.Background())
		assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	})
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(amountSource("1"), testutil.NewMemoryDestination(),
		[]conversion.Arguments{{Column: "amount", ConvertTo: "Int"}}, Config{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromConfigCSVToJSON(t *testing.T) {
	in := testutil.WriteFile(t, "in.csv", "id,price\n1,\"1.234,5\"\n2,oops\n")
	out := filepath.Join(t.TempDir(), "out.jsonl")

	cfg := config.NewDefault()
	cfg.Locale = "de-DE"
	cfg.Source = config.ConnectorConfig{Type: "csv", Path: in, HasHeader: true}
	cfg.Destination = config.ConnectorConfig{Type: "json", Path: out, Annotations: true}
	cfg.Conversions = []config.ConversionConfig{
		{Column: "price", ConvertTo: "Double", NewColumnName: "price_num", ExceptionValue: "invalid"},
	}
	cfg.Pipeline.Workers = 2

	p, err := FromConfig(cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Rows)
	assert.Equal(t, int64(1), result.Failed())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":"1","id_annotation":null,"price":"1.234,5","price_annotation":null,"price_num":1234.5,"price_num_annotation":null}`+"\n"+
			`{"id":"2","id_annotation":null,"price":"oops","price_annotation":null,"price_num":-1.7976931348623157e+308,"price_num_annotation":"invalid"}`+"\n",
		string(data))
}

func TestFromConfigValidates(t *testing.T) {
	cfg := config.NewDefault()
	_, err := FromConfig(cfg, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	cfg.Source = config.ConnectorConfig{Type: "nope", Path: "x"}
	cfg.Destination = config.ConnectorConfig{Type: "json", Path: "y"}
	cfg.Conversions = []config.ConversionConfig{{Column: "a", ConvertTo: "Int"}}
	_, err = FromConfig(cfg, nil)
	assert.Error(t, err)
}
