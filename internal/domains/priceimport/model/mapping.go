package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Binding là trạng thái của một field key trong mapping.
// Set=false: key không có trong mapping ("not relevant").
// Set=true, Column=nil: key hiển thị nhưng chưa map (null trên wire).
type Binding struct {
	Set    bool
	Column *int
}

func (b Binding) Mapped() bool { return b.Set && b.Column != nil }

// SupplierPriceSlot là một cặp price/supplier/discount theo vị trí
type SupplierPriceSlot struct {
	Price    Binding
	Supplier Binding
	Discount Binding
}

func (s *SupplierPriceSlot) binding(kind SlotKind) *Binding {
	switch kind {
	case SlotPrice:
		return &s.Price
	case SlotSupplier:
		return &s.Supplier
	default:
		return &s.Discount
	}
}

func (s SupplierPriceSlot) inUse() bool {
	return s.Price.Set || s.Supplier.Set || s.Discount.Set
}

// ImportMapping: field key -> cột. Mỗi cột phục vụ tối đa một field key.
type ImportMapping struct {
	fields map[FieldKey]Binding
	slots  []SupplierPriceSlot // slots[i] là cặp thứ i+1
}

func NewImportMapping() *ImportMapping {
	return &ImportMapping{fields: make(map[FieldKey]Binding)}
}

// Clone trả về bản sao độc lập
func (m *ImportMapping) Clone() *ImportMapping {
	c := NewImportMapping()
	for k, b := range m.fields {
		c.fields[k] = copyBinding(b)
	}
	for _, s := range m.slots {
		c.slots = append(c.slots, SupplierPriceSlot{
			Price:    copyBinding(s.Price),
			Supplier: copyBinding(s.Supplier),
			Discount: copyBinding(s.Discount),
		})
	}
	return c
}

func copyBinding(b Binding) Binding {
	if b.Column == nil {
		return b
	}
	col := *b.Column
	return Binding{Set: b.Set, Column: &col}
}

// Get trả về binding của key (singular hoặc pair)
func (m *ImportMapping) Get(key FieldKey) Binding {
	p, ok := ParseFieldKey(string(key))
	if !ok {
		return Binding{}
	}
	if !p.IsPair() {
		return m.fields[key]
	}
	if p.Index > len(m.slots) {
		return Binding{}
	}
	return *m.slots[p.Index-1].binding(p.Kind)
}

// Column trả về cột được map cho key
func (m *ImportMapping) Column(key FieldKey) (int, bool) {
	b := m.Get(key)
	if !b.Mapped() {
		return 0, false
	}
	return *b.Column, true
}

// Slots trả về các cặp đến PairCount()
func (m *ImportMapping) Slots() []SupplierPriceSlot {
	n := m.PairCount()
	out := make([]SupplierPriceSlot, n)
	copy(out, m.slots)
	return out
}

// PairCount là index lớn nhất của pair field đang dùng, tối thiểu 1
func (m *ImportMapping) PairCount() int {
	n := 1
	for i, s := range m.slots {
		if s.inUse() {
			n = i + 1
		}
	}
	return n
}

// Owner trả về field key đang giữ cột col
func (m *ImportMapping) Owner(col int) (FieldKey, bool) {
	for _, e := range m.Entries() {
		if e.Binding.Mapped() && *e.Binding.Column == col {
			return e.Key, true
		}
	}
	return "", false
}

// Entry là một cặp key/binding đã set
type Entry struct {
	Key     FieldKey
	Binding Binding
}

// Entries liệt kê các key đã set theo thứ tự ổn định: singular trước, rồi từng cặp
func (m *ImportMapping) Entries() []Entry {
	var out []Entry
	for _, k := range SingularFields {
		if b, ok := m.fields[k]; ok && b.Set {
			out = append(out, Entry{Key: k, Binding: b})
		}
	}
	for i, s := range m.slots {
		for _, kind := range SlotKinds {
			if b := *s.binding(kind); b.Set {
				out = append(out, Entry{Key: PairKey(kind, i+1), Binding: b})
			}
		}
	}
	return out
}

// MappedColumns trả về tập cột đang được map
func (m *ImportMapping) MappedColumns() map[int]FieldKey {
	out := make(map[int]FieldKey)
	for _, e := range m.Entries() {
		if e.Binding.Mapped() {
			out[*e.Binding.Column] = e.Key
		}
	}
	return out
}

// Assign map key vào col. Key khác đang giữ col bị gỡ; cột cũ của key được thay thế.
func (m *ImportMapping) Assign(key FieldKey, col int) error {
	if col < 0 {
		return fmt.Errorf("column index must be non-negative, got %d", col)
	}
	if _, ok := ParseFieldKey(string(key)); !ok {
		return fmt.Errorf("unknown field key %q", key)
	}
	if owner, ok := m.Owner(col); ok && owner != key {
		m.put(owner, Binding{Set: true})
	}
	c := col
	m.put(key, Binding{Set: true, Column: &c})
	return nil
}

// Unmap giữ key trong mapping nhưng không gắn cột (null)
func (m *ImportMapping) Unmap(key FieldKey) error {
	if _, ok := ParseFieldKey(string(key)); !ok {
		return fmt.Errorf("unknown field key %q", key)
	}
	m.put(key, Binding{Set: true})
	return nil
}

// Clear xóa hẳn key khỏi mapping ("not relevant")
func (m *ImportMapping) Clear(key FieldKey) {
	m.put(key, Binding{})
	m.trimSlots()
}

// ClearColumn gỡ mọi key đang trỏ vào col, giữ key ở trạng thái null
func (m *ImportMapping) ClearColumn(col int) {
	if owner, ok := m.Owner(col); ok {
		m.put(owner, Binding{Set: true})
	}
}

// SetPairCount mở rộng hoặc thu gọn số cặp. Cặp mới hiển thị dạng null;
// cặp vượt quá n bị xóa khỏi mapping.
func (m *ImportMapping) SetPairCount(n int) error {
	if n < 1 || n > MaxPairCount {
		return fmt.Errorf("pair count must be between 1 and %d, got %d", MaxPairCount, n)
	}
	for i := 1; i <= n; i++ {
		for _, kind := range SlotKinds {
			if !m.Get(PairKey(kind, i)).Set {
				m.put(PairKey(kind, i), Binding{Set: true})
			}
		}
	}
	if len(m.slots) > n {
		m.slots = m.slots[:n]
	}
	m.trimSlots()
	return nil
}

func (m *ImportMapping) put(key FieldKey, b Binding) {
	p, ok := ParseFieldKey(string(key))
	if !ok {
		return
	}
	if !p.IsPair() {
		if b.Set {
			m.fields[key] = b
		} else {
			delete(m.fields, key)
		}
		return
	}
	for len(m.slots) < p.Index {
		if !b.Set {
			return
		}
		m.slots = append(m.slots, SupplierPriceSlot{})
	}
	*m.slots[p.Index-1].binding(p.Kind) = b
}

func (m *ImportMapping) trimSlots() {
	for len(m.slots) > 0 && !m.slots[len(m.slots)-1].inUse() {
		m.slots = m.slots[:len(m.slots)-1]
	}
}

// ========================================
// WIRE FORMAT: {"fieldKey": int | null}
// ========================================

func (m *ImportMapping) MarshalJSON() ([]byte, error) {
	wire := make(map[string]*int)
	if m != nil {
		for _, e := range m.Entries() {
			wire[string(e.Key)] = e.Binding.Column
		}
	}
	return json.Marshal(wire)
}

func (m *ImportMapping) UnmarshalJSON(data []byte) error {
	var wire map[string]*int
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&wire); err != nil {
		return &MappingError{Messages: []string{"mapping must be an object of field key to column index or null"}}
	}

	fresh := NewImportMapping()
	var problems []string
	owners := make(map[int]string)

	keys := make([]string, 0, len(wire))
	for k := range wire {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		col := wire[k]
		if _, ok := ParseFieldKey(k); !ok {
			problems = append(problems, fmt.Sprintf("unknown field key %q", k))
			continue
		}
		if col == nil {
			fresh.put(FieldKey(k), Binding{Set: true})
			continue
		}
		if *col < 0 {
			problems = append(problems, fmt.Sprintf("field %q has negative column index %d", k, *col))
			continue
		}
		if prev, dup := owners[*col]; dup {
			problems = append(problems, fmt.Sprintf("column %d is mapped to both %q and %q", *col, prev, k))
			continue
		}
		owners[*col] = k
		c := *col
		fresh.put(FieldKey(k), Binding{Set: true, Column: &c})
	}

	if len(problems) > 0 {
		return &MappingError{Messages: problems}
	}
	*m = *fresh
	return nil
}
