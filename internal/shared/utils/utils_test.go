package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "milk 3%", NormalizeName("  Milk   3% "))
	assert.Equal(t, "חלב", NormalizeName("\tחלב\n"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("  \t"))
	assert.True(t, IsBlank("\u200f "))
	assert.False(t, IsBlank(" x "))
}

func TestStripBidiMarks(t *testing.T) {
	assert.Equal(t, "מחיר", StripBidiMarks("\u200fמחיר\u200e"))
	assert.Equal(t, "plain", StripBidiMarks("plain"))
}
