package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalarType(t *testing.T) {
	tests := []struct {
		in   string
		want ScalarType
	}{
		{"String", String},
		{"int", Int},
		{"DATETIME", DateTime},
		{"boolean", Boolean},
		{" Double ", Double},
		{"Duration", Duration},
		{"timespan", Duration},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScalarType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseScalarType("Decimal")
	assert.Error(t, err)
}

func TestScalarTypeText(t *testing.T) {
	var st ScalarType
	require.NoError(t, st.UnmarshalText([]byte("timespan")))
	assert.Equal(t, Duration, st)

	b, err := Boolean.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Boolean", string(b))

	_, err = ScalarType(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "ScalarType(42)", ScalarType(42).String())
}

func TestSentinel(t *testing.T) {
	assert.Equal(t, int32(math.MinInt32), Sentinel(Int))
	assert.Equal(t, -math.MaxFloat64, Sentinel(Double))
	assert.Equal(t, time.Duration(0), Sentinel(Duration))
	assert.Nil(t, Sentinel(Boolean))
	assert.Equal(t, "", Sentinel(String))

	ts, ok := Sentinel(DateTime).(time.Time)
	require.True(t, ok)
	assert.True(t, ts.IsZero())
	assert.Equal(t, time.UTC, ts.Location())
}

func TestConforms(t *testing.T) {
	assert.True(t, Conforms(Int, int32(1)))
	assert.False(t, Conforms(Int, 1))
	assert.True(t, Conforms(Duration, time.Second))
	assert.True(t, Conforms(Boolean, nil))
	assert.False(t, Conforms(Double, float32(1)))
}

func TestHeaderAddColumns(t *testing.T) {
	h, err := NewHeader(NewColumn("a", String), NewColumn("b", Int))
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Index("b"))
	assert.Equal(t, -1, h.Index("c"))

	err = h.AddColumns(NewColumn("c", Double), NewColumn("a", Int))
	require.Error(t, err)
	assert.Equal(t, 2, h.Len(), "failed add must not modify the header")

	err = h.AddColumns(NewColumn("c", Double), NewColumn("c", Int))
	require.Error(t, err)

	require.NoError(t, h.AddColumns(NewColumn("c", Double)))
	col, ok := h.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, Double, col.Type)

	clone := h.Clone()
	require.NoError(t, clone.AddColumns(NewColumn("d", Boolean)))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 4, clone.Len())
}

func TestRowGetSet(t *testing.T) {
	h := MustHeader(NewColumn("in", Int))
	row := NewRow(h)
	row.Load([]any{int32(7)})

	out := NewColumn("out", Boolean)
	require.NoError(t, h.AddColumns(out))

	row.Set(out, nil, "N/A")
	assert.Equal(t, int32(7), row.Get(NewColumn("in", Int)))
	assert.Nil(t, row.Get(out))
	text, ok := row.Cell(1).Display()
	assert.True(t, ok)
	assert.Equal(t, "N/A", text)

	row.Set(NewColumn("missing", Int), int32(1), "")
	assert.Equal(t, 2, row.Len())

	row.Reset()
	assert.Nil(t, row.Get(NewColumn("in", Int)))
}

func TestParseColumn(t *testing.T) {
	assert.Equal(t, NewColumn("amount", Double), ParseColumn("amount:double"))
	assert.Equal(t, NewColumn("elapsed", Duration), ParseColumn("elapsed : TimeSpan"))
	assert.Equal(t, NewColumn("note", String), ParseColumn("note"))
	assert.Equal(t, NewColumn("a:b", String), ParseColumn("a:b"))
}
