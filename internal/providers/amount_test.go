package providers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1", 100},
		{"10.50", 1050},
		{"99.99", 9999},
		{"0.01", 1},
		{"1234.567", 123457}, // provider rounding quirk, round half up
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, MinorUnits(d), "input %s", tt.in)
	}
}

func TestMajorUnitsRoundTrip(t *testing.T) {
	assert.Equal(t, "10.5", MajorUnits(1050).String())
	assert.Equal(t, "0.01", MajorUnits(1).String())
	assert.Equal(t, int64(1050), MinorUnits(MajorUnits(1050)))
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("250.00")
	assert.NoError(t, err)
	assert.Equal(t, int64(25000), got)

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)
}
