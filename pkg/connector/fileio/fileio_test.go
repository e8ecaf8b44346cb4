package fileio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/errors"
)

func TestCreateAndOpenCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv.gz")
	cfg := config.ConnectorConfig{Path: path, Compression: "auto"}

	w, err := Create(cfg)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n1,2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2], "gzip magic")

	r, err := Open(cfg)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestExplicitAlgorithmOverridesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	cfg := config.ConnectorConfig{Path: path, Compression: "zstd"}

	w, err := Create(cfg)
	require.NoError(t, err)
	_, err = io.WriteString(w, "payload")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	plain, err := Open(config.ConnectorConfig{Path: path, Compression: "none"})
	require.NoError(t, err)
	stored, err := io.ReadAll(plain)
	require.NoError(t, err)
	require.NoError(t, plain.Close())
	assert.NotEqual(t, "payload", string(stored))

	r, err := Open(cfg)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestErrors(t *testing.T) {
	_, err := Open(config.ConnectorConfig{})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = Create(config.ConnectorConfig{Path: "x.csv", Compression: "brotli"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = Open(config.ConnectorConfig{Path: filepath.Join(t.TempDir(), "missing.csv")})
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
