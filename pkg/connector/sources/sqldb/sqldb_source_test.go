package sqldb

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/models"
)

func TestScalarTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		scale    int64
		hasScale bool
		want     models.ScalarType
	}{
		{"INT", 0, false, models.Int},
		{"bigint", 0, false, models.Int},
		{"DECIMAL", 2, true, models.Double},
		{"FIXED", 0, true, models.Int},
		{"FIXED", 4, true, models.Double},
		{"DOUBLE", 0, false, models.Double},
		{"BOOLEAN", 0, false, models.Boolean},
		{"DATETIME", 0, false, models.DateTime},
		{"TIMESTAMP_NTZ", 0, false, models.DateTime},
		{"TIME", 0, false, models.Duration},
		{"VARCHAR", 0, false, models.String},
		{"VARIANT", 0, false, models.String},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScalarTypeOf(tt.name, tt.scale, tt.hasScale), tt.name)
	}
}

func TestMySQLDSNParsesTimeInRunZone(t *testing.T) {
	env, err := conversion.NewEnvironment("de-DE", "Europe/Berlin")
	require.NoError(t, err)

	src, err := newSQLSource(MySQL, core.Settings{
		Config: config.ConnectorConfig{DSN: "app:secret@tcp(db:3306)/sales", Query: "SELECT 1"},
		Env:    env,
	})
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(src.dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "Europe/Berlin", cfg.Loc.String())
	assert.Equal(t, "sales", cfg.DBName)

	assert.Equal(t, ".", src.wire.Culture.DecimalSeparator)
	assert.Equal(t, env.Location, src.wire.Location)
}

func TestNewSQLSourceErrors(t *testing.T) {
	_, err := NewMySQLSource(core.Settings{Config: config.ConnectorConfig{DSN: "x@/db"}})
	assert.Error(t, err, "query is required")

	_, err = NewMySQLSource(core.Settings{Config: config.ConnectorConfig{Query: "SELECT 1"}})
	assert.Error(t, err, "dsn is required")

	_, err = NewSnowflakeSource(core.Settings{Config: config.ConnectorConfig{Query: "SELECT 1"}})
	assert.Error(t, err, "account is required")
}

func TestSnowflakeDSNFromProperties(t *testing.T) {
	dsn, err := snowflakeDSN(core.Settings{Config: config.ConnectorConfig{
		Properties: map[string]string{
			"account":  "acme-xy12345",
			"user":     "loader",
			"password": "pw",
			"database": "SALES",
		},
	}})
	require.NoError(t, err)
	assert.Contains(t, dsn, "loader")
	assert.Contains(t, dsn, "SALES")
}

func TestWireEnvironmentParsesDecimals(t *testing.T) {
	env, err := conversion.NewEnvironment("de-DE", "UTC")
	require.NoError(t, err)

	v, ok := conversion.Coerce(env.Invariant(), models.Double, []byte("1234.5"))
	require.True(t, ok)
	assert.Equal(t, 1234.5, v)

	v, ok = conversion.Coerce(env.Invariant(), models.Duration, "01:30:00")
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, v)
}
