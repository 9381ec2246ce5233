package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := map[string]string{
		"10.5":       "10.5",
		" 7,90 ":     "7.9",
		"1,500":      "1500",
		"1,234,567":  "1234567",
		"1.234.567":  "1234567",
		"1.234,56":   "1234.56",
		"1,234.56":   "1234.56",
		"₪ 12.40":    "12.4",
		"12 ש\"ח":    "12",
		"NIS 3":      "3",
		"$4.25":      "4.25",
		"15%":        "15",
		"-2":         "-2",
		"1\u00a0000": "1000",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			d, err := ParseNumber(in)
			require.NoError(t, err)
			assert.Equal(t, want, d.String())
		})
	}
}

func TestParseNumber_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "₪", "1.2.3a", "--"} {
		_, err := ParseNumber(in)
		assert.Error(t, err, in)
	}
}

func TestParseBool(t *testing.T) {
	v, ok := ParseBool("כן")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = ParseBool(" No ")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = ParseBool("maybe")
	assert.False(t, ok)
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "ILS", NormalizeCurrency("₪"))
	assert.Equal(t, "USD", NormalizeCurrency("$"))
	assert.Equal(t, "GBP", NormalizeCurrency("gbp"))
	assert.Equal(t, "", NormalizeCurrency("  "))
}
