package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2022, time.May, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cell string
	}{
		{"iso", "2022-05-06"},
		{"timestamp", "2022-05-06 00:00:00"},
		{"iso with time", "2022-05-06T13:45:00"},
		{"slashes", "2022/05/06"},
		{"month first", "05/06/2022"},
		{"month first short", "5/6/2022"},
		{"excel serial", "44687"},
		{"excel serial with fraction", "44687.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.cell)
			assert.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, cell := range []string{"", "  ", "not a date", "-3"} {
		_, ok := parseDate(cell)
		assert.False(t, ok, cell)
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 0.0012, parseNumber("0.0012"))
	assert.Equal(t, -0.5, parseNumber(" -0.5 "))
	assert.Equal(t, 1234.5, parseNumber("1,234.5"))
	assert.InDelta(t, 0.0015, parseNumber("0.15%"), 1e-15)
	assert.True(t, math.IsNaN(parseNumber("")))
	assert.True(t, math.IsNaN(parseNumber("nan")))
	assert.True(t, math.IsNaN(parseNumber("n/a")))
}

func TestParseOptional(t *testing.T) {
	assert.Nil(t, parseOptional(""))
	v := parseOptional("101.25")
	if assert.NotNil(t, v) {
		assert.Equal(t, 101.25, *v)
	}
}
