package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		selector string
		expected []Variant
	}{
		{"first", []Variant{VariantNext}},
		{"next", []Variant{VariantNext}},
		{" Following ", []Variant{VariantFollowing}},
		{"both", []Variant{VariantNext, VariantFollowing}},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			variants, err := ParseSelector(tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, variants)
		})
	}

	_, err := ParseSelector("last")
	assert.Error(t, err)
}

func TestVariantIndex(t *testing.T) {
	assert.Equal(t, 0, VariantNext.Index())
	assert.Equal(t, 1, VariantFollowing.Index())
	assert.True(t, VariantNext.Valid())
	assert.False(t, Variant("").Valid())
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"2023-10-01T08:00:00.000+0200", "2023-10-01T08:00:00.000+02:00"},
		{"2023-10-01T18:32:00.000+0100", "2023-10-01T18:32:00.000+01:00"},
		{"20231001T080000+0200", "20231001T080000+02:"},
		{"1", ":"},
		{"", ":"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimestamp(tt.raw))
		})
	}
}
