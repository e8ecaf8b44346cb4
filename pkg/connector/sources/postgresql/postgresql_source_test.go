package postgresql

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/models"
)

func TestScalarTypeOf(t *testing.T) {
	assert.Equal(t, models.Int, ScalarTypeOf(pgtype.Int4OID))
	assert.Equal(t, models.Double, ScalarTypeOf(pgtype.NumericOID))
	assert.Equal(t, models.Boolean, ScalarTypeOf(pgtype.BoolOID))
	assert.Equal(t, models.DateTime, ScalarTypeOf(pgtype.TimestamptzOID))
	assert.Equal(t, models.Duration, ScalarTypeOf(pgtype.IntervalOID))
	assert.Equal(t, models.String, ScalarTypeOf(pgtype.UUIDOID))
}

func TestBuildQuery(t *testing.T) {
	q, err := BuildQuery(core.Settings{Config: config.ConnectorConfig{Query: " SELECT 1 "}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", q)

	q, err = BuildQuery(core.Settings{Config: config.ConnectorConfig{
		Properties: map[string]string{"table": "sales.orders"},
	}})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "sales"."orders"`, q)

	_, err = BuildQuery(core.Settings{})
	assert.Error(t, err)
}

func TestNewPostgreSQLSourceRequiresDSN(t *testing.T) {
	_, err := NewPostgreSQLSource(core.Settings{Config: config.ConnectorConfig{Query: "SELECT 1"}})
	assert.Error(t, err)
}

func TestPlain(t *testing.T) {
	interval := pgtype.Interval{Microseconds: 1_500_000, Days: 1, Valid: true}
	assert.Equal(t, 24*time.Hour+1500*time.Millisecond, plain(interval, models.Duration))
	assert.Nil(t, plain(pgtype.Interval{}, models.Duration))

	assert.Equal(t, 90*time.Minute, plain(pgtype.Time{Microseconds: 5_400_000_000, Valid: true}, models.Duration))

	id := [16]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", plain(id, models.String))

	assert.Equal(t, `{"a":1}`, plain(map[string]any{"a": 1}, models.String))
}
