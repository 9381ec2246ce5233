package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrides_ApplyToAll(t *testing.T) {
	o := &Overrides{
		ByRow:       ManualValuesByRow{1: {FieldSKU: "A-1"}},
		IgnoredRows: []int{2},
	}

	o.ApplyToAll(FieldCategory, "משקאות", []int{0, 1, 2})

	assert.Equal(t, "משקאות", o.Global[FieldCategory])
	assert.Equal(t, "משקאות", o.ByRow[0][FieldCategory])
	assert.Equal(t, "משקאות", o.ByRow[1][FieldCategory])
	assert.Equal(t, "A-1", o.ByRow[1][FieldSKU])
	_, touched := o.ByRow[2]
	assert.False(t, touched, "ignored row must not receive the value")

	// chuỗi rỗng: quay về giá trị gốc
	o.ApplyToAll(FieldCategory, "", []int{0, 1, 2})

	_, ok := o.Global[FieldCategory]
	assert.False(t, ok)
	_, ok = o.ByRow[0]
	assert.False(t, ok)
	assert.Equal(t, map[FieldKey]string{FieldSKU: "A-1"}, o.ByRow[1])
}
