package csv

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	csvsource "github.com/ajitpratap0/colconv/pkg/connector/sources/csv"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/models"
)

func writeRows(t *testing.T, cfg config.ConnectorConfig, env *conversion.Environment, header *models.Header, rows []*models.Row) {
	t.Helper()
	dst, err := NewCSVDestination(core.NewSettings(cfg, env, zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, dst.Open(ctx, header))
	require.NoError(t, dst.Write(ctx, rows))
	require.NoError(t, dst.Close(ctx))
}

func TestWriteRendersValuesAndAnnotations(t *testing.T) {
	header := models.MustHeader(
		models.NewColumn("name", models.String),
		models.NewColumn("amount", models.Double),
		models.NewColumn("amount_int", models.Int),
	)
	ok := models.NewRow(header)
	ok.Load([]any{"a;b", 1234.5, int32(1235)})
	bad := models.NewRow(header)
	bad.Load([]any{"c", nil})
	bad.Set(header.Column(2), models.IntSentinel, "invalid")

	env, err := conversion.NewEnvironment("de-DE", "UTC")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	writeRows(t, config.ConnectorConfig{Path: path, Delimiter: ";", HasHeader: true}, env,
		header, []*models.Row{ok, bad})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name;amount;amount_int\n\"a;b\";1234,5;1235\nc;;invalid\n", string(data))
}

func TestTypedHeaderRoundTrip(t *testing.T) {
	header := models.MustHeader(
		models.NewColumn("when", models.DateTime),
		models.NewColumn("took", models.Duration),
		models.NewColumn("done", models.Boolean),
	)
	when := time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC)
	row := models.NewRow(header)
	row.Load([]any{when, 90 * time.Second, true})

	cfg := config.ConnectorConfig{
		Type:        "csv",
		Path:        filepath.Join(t.TempDir(), "out.csv.gz"),
		Compression: "auto",
		HasHeader:   true,
		Properties:  map[string]string{"typed_header": "true"},
	}
	writeRows(t, cfg, nil, header, []*models.Row{row})

	src, err := csvsource.NewCSVSource(core.NewSettings(cfg, nil, zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, src.Open(ctx))
	defer src.Close(ctx)

	assert.Equal(t, header.Columns(), src.Header().Columns())
	values, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{when, 90 * time.Second, true}, values)
	_, err = src.Read(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestTypedHeaderReadsBackSentinelsAndFallbacks(t *testing.T) {
	header := models.MustHeader(
		models.NewColumn("took", models.Duration),
		models.NewColumn("n", models.Int),
		models.NewColumn("x", models.Double),
		models.NewColumn("ok", models.Boolean),
	)
	stored := models.NewRow(header)
	stored.Load([]any{time.Duration(0), models.IntSentinel, models.DoubleSentinel, false})

	failed := models.NewRow(header)
	failed.Set(header.Column(0), models.DurationSentinel, "N/A")
	failed.Set(header.Column(1), models.IntSentinel, "N/A")
	failed.Set(header.Column(2), models.DoubleSentinel, "invalid")
	failed.Set(header.Column(3), nil, "N/A")

	cfg := config.ConnectorConfig{
		Type:      "csv",
		Path:      filepath.Join(t.TempDir(), "out.csv"),
		HasHeader: true,
		Properties: map[string]string{
			"typed_header":    "true",
			"fallback_values": "N/A, invalid",
		},
	}
	writeRows(t, cfg, nil, header, []*models.Row{stored, failed})

	data, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, "took:Duration,n:Int,x:Double,ok:Boolean\n"+
		"00:00:00,-2147483648,-1.7976931348623157E+308,False\n"+
		"N/A,N/A,invalid,N/A\n", string(data))

	src, err := csvsource.NewCSVSource(core.NewSettings(cfg, nil, zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, src.Open(ctx))
	defer src.Close(ctx)

	values, err := src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{time.Duration(0), models.IntSentinel, models.DoubleSentinel, false}, values)

	values, err = src.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{models.DurationSentinel, models.IntSentinel, models.DoubleSentinel, nil}, values)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "N/A", Render(nil, models.Cell{Value: int32(1), Annotation: "N/A"}))
	assert.Equal(t, "", Render(nil, models.Cell{}))
	assert.Equal(t, "42", Render(nil, models.Cell{Value: int32(42)}))
}

func TestInvalidSettings(t *testing.T) {
	_, err := NewCSVDestination(core.NewSettings(config.ConnectorConfig{}, nil, nil))
	assert.Error(t, err)
	_, err = NewCSVDestination(core.NewSettings(config.ConnectorConfig{
		Path:       "x.csv",
		Properties: map[string]string{"typed_header": "maybe"},
	}, nil, nil))
	assert.Error(t, err)
}
