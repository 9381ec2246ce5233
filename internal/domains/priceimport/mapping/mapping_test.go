package mapping

import (
	"errors"
	"testing"

	"pricebook-backend/internal/domains/priceimport/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns(headers ...string) []model.SourceColumn {
	out := make([]model.SourceColumn, len(headers))
	for i, h := range headers {
		h := h
		out[i] = model.SourceColumn{Index: i, HeaderValue: &h}
	}
	return out
}

func TestInfer_SingularAndPairs(t *testing.T) {
	m := Infer(columns("שם המוצר", "מק\"ט", "ספק", "מחיר", "ספק", "מחיר", "הנחה"))

	assertCol := func(key model.FieldKey, want int) {
		t.Helper()
		got, ok := m.Column(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	assertCol(model.FieldProductName, 0)
	assertCol(model.FieldSKU, 1)
	assertCol(model.PairKey(model.SlotSupplier, 1), 2)
	assertCol(model.PairKey(model.SlotPrice, 1), 3)
	assertCol(model.PairKey(model.SlotSupplier, 2), 4)
	assertCol(model.PairKey(model.SlotPrice, 2), 5)
	assertCol(model.PairKey(model.SlotDiscount, 1), 6)

	assert.Equal(t, 3, m.PairCount())
	assert.True(t, m.Get(model.PairKey(model.SlotPrice, 3)).Set)
}

func TestInfer_EmptySheet(t *testing.T) {
	m := Infer(nil)
	assert.Empty(t, m.MappedColumns())
	assert.Equal(t, model.MinPairCount, m.PairCount())
	assert.True(t, m.Get(model.FieldProductName).Set)
}

func TestInfer_SellPriceOnlyWithoutBuyPrice(t *testing.T) {
	m := Infer(columns("name", "retail price"))
	col, ok := m.Column(model.PairKey(model.SlotPrice, 1))
	require.True(t, ok)
	assert.Equal(t, 1, col)

	m = Infer(columns("name", "retail price", "cost"))
	col, ok = m.Column(model.PairKey(model.SlotPrice, 1))
	require.True(t, ok)
	assert.Equal(t, 2, col)
	_, owned := m.Owner(1)
	assert.False(t, owned)
}

func TestInfer_QualifiedPriceHeaders(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
	}{
		{"before vat", []string{"שם מוצר", `מחיר לפני מע"מ`}},
		{"including vat", []string{"שם מוצר", `מחיר כולל מע"מ`}},
		{"excl vat english", []string{"product name", "Price excl. VAT"}},
		{"supplier price", []string{"שם מוצר", "מחיר ספק"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Infer(columns(tc.headers...))

			col, ok := m.Column(model.PairKey(model.SlotPrice, 1))
			require.True(t, ok)
			assert.Equal(t, 1, col)
			assert.False(t, m.Get(model.FieldVATRate).Mapped())
			assert.False(t, m.Get(model.FieldPriceIncludesVAT).Mapped())
			assert.False(t, m.Get(model.PairKey(model.SlotSupplier, 1)).Mapped())
		})
	}
}

func TestInfer_ManyPairsExpandsCount(t *testing.T) {
	m := Infer(columns("name", "price", "price", "price", "price"))
	assert.Equal(t, 4, m.PairCount())
	assert.Equal(t, 4, SuggestedPairCount(m))
}

func TestAutoHidden(t *testing.T) {
	cols := columns("name", "", "total_derived", "")
	rows := []model.Row{
		{Index: 0, Cells: []string{"Cola", "", "12", "x"}},
		{Index: 1, Cells: []string{"Fanta", "  ", "13"}},
	}
	assert.Equal(t, []int{1, 2}, AutoHidden(cols, rows, nil))

	m := model.NewImportMapping()
	require.NoError(t, m.Assign(model.FieldLineTotal, 2))
	assert.Equal(t, []int{1}, AutoHidden(cols, rows, m))
}

func TestEdit(t *testing.T) {
	m := model.NewImportMapping()
	require.NoError(t, m.Assign(model.FieldProductName, 0))
	col := 0

	res, err := Edit(model.MappingEditRequest{Mapping: m, Op: model.OpHideColumn, Column: &col})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.HiddenColumns)
	assert.False(t, res.Mapping.Get(model.FieldProductName).Mapped())
	// request mapping không bị sửa
	assert.True(t, m.Get(model.FieldProductName).Mapped())

	res, err = Edit(model.MappingEditRequest{Mapping: res.Mapping, HiddenColumns: res.HiddenColumns, Op: model.OpAssign, FieldKey: model.FieldSKU, Column: &col})
	require.NoError(t, err)
	assert.Empty(t, res.HiddenColumns)

	res, err = Edit(model.MappingEditRequest{Mapping: res.Mapping, Op: model.OpSetPairCount, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, res.PairCount)

	_, err = Edit(model.MappingEditRequest{Mapping: res.Mapping, Op: model.OpClear, FieldKey: "bogus"})
	var mErr *model.MappingError
	assert.True(t, errors.As(err, &mErr))
}
