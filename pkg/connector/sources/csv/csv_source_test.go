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
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/models"
)

func openSource(t *testing.T, content string, cfg config.ConnectorConfig) core.Source {
	t.Helper()
	cfg.Path = filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(cfg.Path, []byte(content), 0o600))

	src, err := NewCSVSource(core.NewSettings(cfg, conversion.DefaultEnvironment(), zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, src.Open(context.Background()))
	t.Cleanup(func() { _ = src.Close(context.Background()) })
	return src
}

func readAll(t *testing.T, src core.Source) [][]any {
	t.Helper()
	var rows [][]any
	for {
		values, err := src.Read(context.Background())
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, values)
	}
}

func TestTypedHeader(t *testing.T) {
	src := openSource(t, "id:Int,when:DateTime,label\n7,2024-03-01 10:00:00,x\n,,\n",
		config.ConnectorConfig{HasHeader: true})

	assert.Equal(t, []models.Column{
		models.NewColumn("id", models.Int),
		models.NewColumn("when", models.DateTime),
		models.NewColumn("label", models.String),
	}, src.Header().Columns())

	rows := readAll(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{int32(7), time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "x"}, rows[0])
	assert.Equal(t, []any{nil, nil, ""}, rows[1])
}

func TestDeclaredColumnsSelectByName(t *testing.T) {
	src := openSource(t, "a;b;c\n1;true;2,5\n", config.ConnectorConfig{
		HasHeader: true,
		Delimiter: ";",
		Columns: []models.Column{
			models.NewColumn("c", models.String),
			models.NewColumn("b", models.Boolean),
		},
	})
	assert.Equal(t, [][]any{{"2,5", true}}, readAll(t, src))
}

func TestNoHeader(t *testing.T) {
	src := openSource(t, "x,y\nz\n", config.ConnectorConfig{})
	assert.Equal(t, []models.Column{
		models.NewColumn("column_1", models.String),
		models.NewColumn("column_2", models.String),
	}, src.Header().Columns())
	assert.Equal(t, [][]any{{"x", "y"}, {"z", ""}}, readAll(t, src))
}

func TestUnreadableValue(t *testing.T) {
	src := openSource(t, "n:Int\nseven\n", config.ConnectorConfig{HasHeader: true})
	_, err := src.Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestSentinelsAndFallbacks(t *testing.T) {
	src := openSource(t, "d:Duration,n:Int,label\n00:00:00,-2147483648,N/A\nN/A,N/A,x\n",
		config.ConnectorConfig{HasHeader: true})

	rows := readAll(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{time.Duration(0), models.IntSentinel, "N/A"}, rows[0])
	assert.Equal(t, []any{models.DurationSentinel, models.IntSentinel, "x"}, rows[1])
}

func TestCustomFallbackValues(t *testing.T) {
	src := openSource(t, "n:Int\ninvalid\nN/A\n", config.ConnectorConfig{
		HasHeader:  true,
		Properties: map[string]string{"fallback_values": "invalid"},
	})
	_, err := src.Read(context.Background())
	require.NoError(t, err)
	_, err = src.Read(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestMissingHeaderColumn(t *testing.T) {
	cfg := config.ConnectorConfig{
		Path:      filepath.Join(t.TempDir(), "in.csv"),
		HasHeader: true,
		Columns:   []models.Column{models.NewColumn("missing", models.Int)},
	}
	require.NoError(t, os.WriteFile(cfg.Path, []byte("a\n1\n"), 0o600))
	src, err := NewCSVSource(core.NewSettings(cfg, nil, nil))
	require.NoError(t, err)
	assert.True(t, errors.IsType(src.Open(context.Background()), errors.ErrorTypeConfig))
}

func TestDelimiter(t *testing.T) {
	r, err := Delimiter(config.ConnectorConfig{Delimiter: "\t"})
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	_, err = Delimiter(config.ConnectorConfig{Delimiter: ";;"})
	assert.Error(t, err)
	_, err = NewCSVSource(core.NewSettings(config.ConnectorConfig{}, nil, nil))
	assert.Error(t, err)
}
