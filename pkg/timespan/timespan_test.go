package timespan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"01:30:00", 90 * time.Minute, true},
		{"1:2", time.Hour + 2*time.Minute, true},
		{"  00:00:10  ", 10 * time.Second, true},
		{"-00:00:10", -10 * time.Second, true},
		{"5", 5 * 24 * time.Hour, true},
		{"1.02:03:04.5", 26*time.Hour + 3*time.Minute + 4500*time.Millisecond, true},
		{"1:02:03:04", 26*time.Hour + 3*time.Minute + 4*time.Second, true},
		{"00:00:00.0000001", 100 * time.Nanosecond, true},
		{"00:00:00", 0, true},
		{"1h30m", 90 * time.Minute, true},
		{"24:00:00", 0, false},
		{"10:60", 0, false},
		{"00:00:00.12345678", 0, false},
		{"1.", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{90 * time.Minute, "01:30:00"},
		{-10 * time.Second, "-00:00:10"},
		{26*time.Hour + 3*time.Minute + 4500*time.Millisecond, "1.02:03:04.5000000"},
		{150 * time.Nanosecond, "00:00:00.0000001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}

func TestFormatParsesBack(t *testing.T) {
	for _, d := range []time.Duration{time.Second, 49*time.Hour + 7*time.Millisecond, -3 * time.Minute} {
		got, ok := Parse(Format(d))
		assert.True(t, ok)
		assert.Equal(t, d, got)
	}
}
