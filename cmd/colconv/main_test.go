package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/testutil"
)

func TestTypeFromPath(t *testing.T) {
	tests := map[string]string{
		"in.csv":           "csv",
		"in.CSV.gz":        "csv",
		"rows.ndjson.zst":  "json",
		"out.parquet":      "parquet",
		"out.feather":      "arrow",
		"out.avro":         "avro",
		"-":                "",
		"notes.md":         "",
		"dir/data.tsv.lz4": "csv",
	}
	for path, want := range tests {
		assert.Equal(t, want, typeFromPath(path), path)
	}
}

func TestResolveConfigFlags(t *testing.T) {
	cmd := runCommand()
	require.NoError(t, cmd.Flags().Parse([]string{
		"--source", "in.csv",
		"--destination", "out.parquet",
		"--column", "amount", "--to", "Double", "--name", "amount_num",
		"--locale", "de-DE",
		"--no-header",
		"--workers", "3",
		"--timeout", "2s",
	}))
	v, err := newViper(cmd.Flags())
	require.NoError(t, err)

	cfg, err := resolveConfig("", v)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Source.Type)
	assert.Equal(t, "parquet", cfg.Destination.Type)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.False(t, cfg.Source.HasHeader)
	assert.Equal(t, ",", cfg.Source.Delimiter)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.Timeout)
	assert.Equal(t, []config.ConversionConfig{
		{Column: "amount", ConvertTo: "Double", NewColumnName: "amount_num"},
	}, cfg.Conversions)
}

func TestResolveConfigFileAndEnvironment(t *testing.T) {
	path := testutil.WriteFile(t, "run.yaml", `
source:
  type: json
  path: in.jsonl
destination:
  type: csv
  path: out.csv
conversions:
  - column: when
    convert_to: DateTime
locale: fr-FR
pipeline:
  batch_size: 10
`)
	t.Setenv("COLCONV_PIPELINE_BATCH_SIZE", "25")

	cmd := runCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--column", "when", "--to", "String"}))
	v, err := newViper(cmd.Flags())
	require.NoError(t, err)

	cfg, err := resolveConfig(path, v)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Source.Type)
	assert.Equal(t, "fr-FR", cfg.Locale)
	assert.Equal(t, 25, cfg.Pipeline.BatchSize)
	require.Len(t, cfg.Conversions, 2)
	assert.Equal(t, "DateTime", cfg.Conversions[0].ConvertTo)
	assert.Equal(t, "String", cfg.Conversions[1].ConvertTo)
}

func TestResolveConfigMissingFile(t *testing.T) {
	v, err := newViper(runCommand().Flags())
	require.NoError(t, err)
	_, err = resolveConfig(filepath.Join(t.TempDir(), "missing.yaml"), v)
	assert.Error(t, err)
}

func TestPrintMatrix(t *testing.T) {
	var buf bytes.Buffer
	printMatrix(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "Duration")
	// Duration converts to String only.
	assert.Equal(t, []string{"Duration", "x", "-", "-", "-", "-", "-"}, strings.Fields(lines[6]))
}

func TestTypesCommand(t *testing.T) {
	cmd := typesCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "String\nInt\nDateTime\nBoolean\nDouble\nDuration\nTimeSpan (alias of Duration)\n", buf.String())
}

func TestRunCommand(t *testing.T) {
	in := testutil.WriteFile(t, "in.csv", "id,flag\n1,true\n2,maybe\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	cmd := runCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{
		"--source", in, "--destination", out,
		"--column", "flag", "--to", "Boolean", "--name", "ok", "--exception-value", "?",
		"--log-level", "error",
	})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "id,flag,ok\n1,true,True\n2,maybe,?\n", string(data))
	assert.Contains(t, buf.String(), "2 rows")
}
