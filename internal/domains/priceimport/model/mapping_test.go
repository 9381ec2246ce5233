package model

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldKey(t *testing.T) {
	p, ok := ParseFieldKey("product_name")
	require.True(t, ok)
	assert.False(t, p.IsPair())

	p, ok = ParseFieldKey("discount_percent_12")
	require.True(t, ok)
	assert.Equal(t, SlotDiscount, p.Kind)
	assert.Equal(t, 12, p.Index)

	for _, bad := range []string{"price_0", "price_", "price_01", "price_x", "supplier", "foo", "price_999"} {
		_, ok := ParseFieldKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestImportMapping_AssignMovesColumn(t *testing.T) {
	m := NewImportMapping()
	require.NoError(t, m.Assign(FieldProductName, 0))
	require.NoError(t, m.Assign(PairKey(SlotPrice, 1), 1))

	// cột 1 chuyển sang sku: price_1 còn trong mapping nhưng null
	require.NoError(t, m.Assign(FieldSKU, 1))
	col, ok := m.Column(FieldSKU)
	require.True(t, ok)
	assert.Equal(t, 1, col)
	b := m.Get(PairKey(SlotPrice, 1))
	assert.True(t, b.Set)
	assert.Nil(t, b.Column)

	// product_name chuyển sang cột 2: cột 0 không còn ai giữ
	require.NoError(t, m.Assign(FieldProductName, 2))
	_, owned := m.Owner(0)
	assert.False(t, owned)
}

func TestImportMapping_ClearAndPairCount(t *testing.T) {
	m := NewImportMapping()
	assert.Equal(t, 1, m.PairCount())

	require.NoError(t, m.Assign(PairKey(SlotSupplier, 4), 3))
	assert.Equal(t, 4, m.PairCount())

	m.Clear(PairKey(SlotSupplier, 4))
	assert.Equal(t, 1, m.PairCount())
	assert.False(t, m.Get(PairKey(SlotSupplier, 4)).Set)

	require.NoError(t, m.SetPairCount(3))
	assert.Equal(t, 3, m.PairCount())
	assert.True(t, m.Get(PairKey(SlotDiscount, 3)).Set)

	require.NoError(t, m.SetPairCount(2))
	assert.Equal(t, 2, m.PairCount())
	assert.Error(t, m.SetPairCount(0))
}

func TestImportMapping_JSON(t *testing.T) {
	var m ImportMapping
	require.NoError(t, json.Unmarshal([]byte(`{"product_name":0,"price_1":1,"supplier_1":2,"discount_percent_2":null}`), &m))

	col, ok := m.Column(PairKey(SlotSupplier, 1))
	require.True(t, ok)
	assert.Equal(t, 2, col)
	assert.Equal(t, 2, m.PairCount())

	out, err := json.Marshal(&m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_name":0,"price_1":1,"supplier_1":2,"discount_percent_2":null}`, string(out))
}

func TestImportMapping_JSONRejectsBadInput(t *testing.T) {
	cases := []string{
		`{"nope":1}`,
		`{"product_name":-1}`,
		`{"product_name":1,"sku":1}`,
		`[1,2]`,
	}
	for _, raw := range cases {
		var m ImportMapping
		err := json.Unmarshal([]byte(raw), &m)
		var mErr *MappingError
		assert.True(t, errors.As(err, &mErr), raw)
	}
}

// Bất kể chuỗi thao tác nào, không cột nào bị hai field key cùng giữ
// và field key không bao giờ giữ hai cột.
func TestImportMapping_AssignNeverSharesColumn(t *testing.T) {
	keys := append([]FieldKey{}, SingularFields...)
	for i := 1; i <= 4; i++ {
		for _, kind := range SlotKinds {
			keys = append(keys, PairKey(kind, i))
		}
	}

	rng := rand.New(rand.NewSource(42))
	m := NewImportMapping()
	for step := 0; step < 2000; step++ {
		key := keys[rng.Intn(len(keys))]
		switch rng.Intn(4) {
		case 0:
			m.Clear(key)
		case 1:
			require.NoError(t, m.Unmap(key))
		default:
			col := rng.Intn(8)
			require.NoError(t, m.Assign(key, col))
			got, ok := m.Column(key)
			require.True(t, ok)
			require.Equal(t, col, got)
		}

		seen := map[int]FieldKey{}
		for _, e := range m.Entries() {
			if !e.Binding.Mapped() {
				continue
			}
			c := *e.Binding.Column
			prev, dup := seen[c]
			require.False(t, dup, "column %d held by %s and %s", c, prev, e.Key)
			seen[c] = e.Key
		}
	}
}
