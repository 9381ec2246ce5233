package derive

import (
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/shared/utils"
)

// Resolver là chuỗi ưu tiên giá trị cho (field, row). Không sửa dữ liệu gốc nên
// "revert về giá trị file" chỉ là xóa override.
type Resolver struct {
	mapping        *model.ImportMapping
	overrides      model.Overrides
	manualByField  map[model.FieldKey][]model.ManualColumn
	manualSupplier string
}

func NewResolver(mapping *model.ImportMapping, overrides model.Overrides) *Resolver {
	r := &Resolver{
		mapping:        mapping,
		overrides:      overrides,
		manualByField:  make(map[model.FieldKey][]model.ManualColumn),
		manualSupplier: utils.CollapseSpaces(overrides.ManualSupplierName),
	}
	for _, mc := range overrides.Columns {
		r.manualByField[mc.FieldKey] = append(r.manualByField[mc.FieldKey], mc)
	}
	return r
}

// Resolve: override theo dòng > manual supplier của tenant (chỉ supplier_i) >
// ô được map > manual column theo dòng > manual column bulk > giá trị global
func (r *Resolver) Resolve(key model.FieldKey, row model.Row) string {
	if v, ok := r.rowOverride(key, row); ok {
		return v
	}
	if r.manualSupplier != "" && isSupplierKey(key) {
		return r.manualSupplier
	}
	return r.resolveBelowTenant(key, row)
}

// ResolveOwn giống Resolve nhưng bỏ qua manual supplier của tenant
func (r *Resolver) ResolveOwn(key model.FieldKey, row model.Row) string {
	if v, ok := r.rowOverride(key, row); ok {
		return v
	}
	return r.resolveBelowTenant(key, row)
}

func (r *Resolver) rowOverride(key model.FieldKey, row model.Row) (string, bool) {
	values, ok := r.overrides.ByRow[row.Index]
	if !ok {
		return "", false
	}
	// Chuỗi rỗng = xóa override
	v := utils.CollapseSpaces(values[key])
	return v, v != ""
}

func (r *Resolver) resolveBelowTenant(key model.FieldKey, row model.Row) string {
	if col, ok := r.mapping.Column(key); ok {
		if v := utils.CollapseSpaces(row.Cell(col)); v != "" {
			return v
		}
	}

	for _, mc := range r.manualByField[key] {
		if v := utils.CollapseSpaces(mc.Values[row.Index]); v != "" {
			return v
		}
	}
	for _, mc := range r.manualByField[key] {
		if v := utils.CollapseSpaces(mc.BulkValue); v != "" {
			return v
		}
	}

	return utils.CollapseSpaces(r.overrides.Global[key])
}

// HasSource cho biết field có bất kỳ nguồn giá trị nào ngoài override theo dòng
func (r *Resolver) HasSource(key model.FieldKey) bool {
	if _, ok := r.mapping.Column(key); ok {
		return true
	}
	if len(r.manualByField[key]) > 0 {
		return true
	}
	return utils.CollapseSpaces(r.overrides.Global[key]) != ""
}

// HasRowValue cho biết có dòng nào override field này với giá trị khác rỗng
func (r *Resolver) HasRowValue(key model.FieldKey) bool {
	for _, values := range r.overrides.ByRow {
		if utils.CollapseSpaces(values[key]) != "" {
			return true
		}
	}
	return false
}

func isSupplierKey(key model.FieldKey) bool {
	p, ok := model.ParseFieldKey(string(key))
	return ok && p.Kind == model.SlotSupplier
}
