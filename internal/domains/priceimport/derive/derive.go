// Package derive dựng lại tập dòng từ file + mapping + overrides.
// Validate và Apply dùng chung package này nên cùng input luôn cho cùng kết quả.
package derive

import (
	"fmt"
	"sort"

	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/shared/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Pair là một cặp supplier/price hợp lệ của dòng
type Pair struct {
	Index              int
	Price              decimal.Decimal
	DiscountPercent    decimal.Decimal
	Supplier           string
	SupplierNormalized string
}

// Row là dòng đã derive, chỉ chứa các cặp còn lại sau dedupe
type Row struct {
	Index            int
	SheetRow         int
	ProductName      string
	NormalizedName   string
	SKU              string
	Barcode          string
	Category         string
	PricingUnit      string
	PackageQuantity  *decimal.Decimal
	PackageType      string
	Currency         string
	PriceIncludesVAT bool
	VATRate          *decimal.Decimal
	Pairs            []Pair
}

// Result là kết quả derive cho Validate/Apply
type Result struct {
	Rows               []Row
	RowErrors          []model.RowError
	UnimportedProducts []model.UnimportedProduct
	Diagnostics        model.ImportDiagnostics
}

func (r *Result) StatsEstimate() model.StatsEstimate {
	return model.StatsEstimate{
		TotalInputRows: r.Diagnostics.RowsBeforeIgnored,
		MappedRows:     r.Diagnostics.RowsAfterDedupe,
		SkippedRows:    r.Diagnostics.RowsBeforeIgnored - r.Diagnostics.RowsAfterDedupe,
	}
}

// PairCount tổng số cặp trong các dòng
func (r *Result) PairCount() int {
	n := 0
	for _, row := range r.Rows {
		n += len(row.Pairs)
	}
	return n
}

type dedupeKey struct {
	name, sku, supplier, price string
	pair                       int
}

// Derive chạy toàn bộ pipeline derive. MappingError là lỗi dừng; lỗi theo dòng
// được gom vào Result.
func Derive(table model.Table, mapping *model.ImportMapping, overrides model.Overrides) (*Result, error) {
	if mapping == nil {
		mapping = model.NewImportMapping()
	}
	resolver := NewResolver(mapping, overrides)

	if err := checkMapping(mapping, overrides, resolver); err != nil {
		return nil, err
	}

	pairCount := effectivePairCount(mapping, overrides)
	ignored := overrides.IgnoredSet()

	res := &Result{
		RowErrors:          []model.RowError{},
		UnimportedProducts: []model.UnimportedProduct{},
	}
	diag := &res.Diagnostics
	diag.RowsBeforeIgnored = len(table.Rows)

	seen := make(map[dedupeKey]int) // key -> SheetRow của lần xuất hiện đầu

	for _, src := range table.Rows {
		if ignored[src.Index] {
			diag.IgnoredRowsCount++
			continue
		}

		row, pairs, reason := deriveRow(src, resolver, pairCount, res)
		if len(pairs) == 0 {
			res.UnimportedProducts = append(res.UnimportedProducts, model.UnimportedProduct{
				Row: src.Index, SheetRow: src.SheetRow, ProductName: row.ProductName, Reason: reason,
			})
			continue
		}
		diag.MappedRowsBeforeDedupe++

		// Dedupe: bản đầu tiên thắng
		firstSeen := 0
		for _, p := range pairs {
			key := dedupeKey{
				name:     row.NormalizedName,
				sku:      utils.NormalizeName(row.SKU),
				supplier: p.SupplierNormalized,
				price:    p.Price.String(),
				pair:     p.Index,
			}
			if first, dup := seen[key]; dup {
				if firstSeen == 0 {
					firstSeen = first
				}
				continue
			}
			seen[key] = src.SheetRow
			row.Pairs = append(row.Pairs, p)
		}

		if len(row.Pairs) == 0 {
			diag.DroppedAsDuplicates++
			res.UnimportedProducts = append(res.UnimportedProducts, model.UnimportedProduct{
				Row: src.Index, SheetRow: src.SheetRow, ProductName: row.ProductName,
				Reason: fmt.Sprintf("duplicate of row %d", firstSeen),
			})
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	diag.SourceRows = diag.RowsBeforeIgnored - diag.IgnoredRowsCount
	diag.RowsAfterDedupe = len(res.Rows)
	diag.DroppedInValidation = diag.SourceRows - diag.MappedRowsBeforeDedupe
	return res, nil
}

// checkMapping kiểm tra các lỗi dừng: thiếu nguồn product name / price, manual column chưa cấu hình
func checkMapping(mapping *model.ImportMapping, overrides model.Overrides, r *Resolver) error {
	var problems []string

	for i, mc := range overrides.Columns {
		if mc.FieldKey == "" {
			problems = append(problems, fmt.Sprintf("manual column %d has no field selected", i+1))
			continue
		}
		if _, ok := model.ParseFieldKey(string(mc.FieldKey)); !ok {
			problems = append(problems, fmt.Sprintf("manual column %d has unknown field %q", i+1, mc.FieldKey))
		}
	}
	for _, key := range sortedKeys(overrides.Global) {
		if _, ok := model.ParseFieldKey(string(key)); !ok {
			problems = append(problems, fmt.Sprintf("manual value for unknown field %q", key))
		}
	}
	for _, idx := range sortedRowIndexes(overrides.ByRow) {
		for _, key := range sortedKeys(overrides.ByRow[idx]) {
			if _, ok := model.ParseFieldKey(string(key)); !ok {
				problems = append(problems, fmt.Sprintf("row %d has manual value for unknown field %q", idx, key))
			}
		}
	}

	if !r.HasSource(model.FieldProductName) {
		problems = append(problems, "product_name must be mapped to a column or given a manual value")
	}

	hasPrice := false
	for i := 1; i <= effectivePairCount(mapping, overrides) && !hasPrice; i++ {
		key := model.PairKey(model.SlotPrice, i)
		hasPrice = r.HasSource(key) || r.HasRowValue(key)
	}
	if !hasPrice {
		problems = append(problems, "at least one price column must be mapped or given a manual value")
	}

	if len(problems) > 0 {
		return &model.MappingError{Messages: problems}
	}
	return nil
}

// effectivePairCount = max(số cặp của mapping, index lớn nhất được override tham chiếu)
func effectivePairCount(mapping *model.ImportMapping, overrides model.Overrides) int {
	n := mapping.PairCount()
	bump := func(key model.FieldKey) {
		if p, ok := model.ParseFieldKey(string(key)); ok && p.IsPair() && p.Index > n {
			n = p.Index
		}
	}
	for key := range overrides.Global {
		bump(key)
	}
	for _, values := range overrides.ByRow {
		for key := range values {
			bump(key)
		}
	}
	for _, mc := range overrides.Columns {
		bump(mc.FieldKey)
	}
	return n
}

// deriveRow trả về dòng (chưa có Pairs), các cặp hợp lệ trước dedupe và lý do khi không có cặp nào
func deriveRow(src model.Row, r *Resolver, pairCount int, res *Result) (Row, []Pair, string) {
	rowErr := func(field model.FieldKey, format string, args ...any) string {
		msg := fmt.Sprintf(format, args...)
		res.RowErrors = append(res.RowErrors, model.RowError{
			Row: src.Index, SheetRow: src.SheetRow, Field: field, Message: msg,
		})
		return msg
	}

	row := Row{
		Index:       src.Index,
		SheetRow:    src.SheetRow,
		ProductName: r.Resolve(model.FieldProductName, src),
		SKU:         r.Resolve(model.FieldSKU, src),
		Barcode:     r.Resolve(model.FieldBarcode, src),
		Category:    r.Resolve(model.FieldCategory, src),
		PricingUnit: r.Resolve(model.FieldPricingUnit, src),
		PackageType: r.Resolve(model.FieldPackageType, src),
		Currency:    NormalizeCurrency(r.Resolve(model.FieldCurrency, src)),
	}
	row.NormalizedName = utils.NormalizeName(row.ProductName)
	if row.NormalizedName == "" {
		return row, nil, "missing product name"
	}

	// Field tùy chọn: sai định dạng => báo lỗi, bỏ field, dòng vẫn import
	if raw := r.Resolve(model.FieldPackageQuantity, src); raw != "" {
		if d, err := ParseNumber(raw); err != nil || !d.IsPositive() {
			rowErr(model.FieldPackageQuantity, "package_quantity %q is not a positive number", raw)
		} else {
			row.PackageQuantity = &d
		}
	}
	if raw := r.Resolve(model.FieldVATRate, src); raw != "" {
		if d, err := ParseNumber(raw); err != nil || d.IsNegative() || d.GreaterThan(hundred) {
			rowErr(model.FieldVATRate, "vat_rate %q must be a number between 0 and 100", raw)
		} else {
			row.VATRate = &d
		}
	}
	if raw := r.Resolve(model.FieldPriceIncludesVAT, src); raw != "" {
		if v, ok := ParseBool(raw); ok {
			row.PriceIncludesVAT = v
		} else {
			rowErr(model.FieldPriceIncludesVAT, "source_price_includes_vat %q is not a yes/no value", raw)
		}
	}
	var lineTotal *decimal.Decimal
	if raw := r.Resolve(model.FieldLineTotal, src); raw != "" {
		if d, err := ParseNumber(raw); err != nil || !d.IsPositive() {
			rowErr(model.FieldLineTotal, "line_total %q is not a positive number", raw)
		} else {
			lineTotal = &d
		}
	}

	var (
		pairs     []Pair
		firstErr  string
		populated bool
	)
	for i := 1; i <= pairCount; i++ {
		priceKey := model.PairKey(model.SlotPrice, i)
		supplierKey := model.PairKey(model.SlotSupplier, i)
		discountKey := model.PairKey(model.SlotDiscount, i)

		priceRaw := r.Resolve(priceKey, src)
		ownSupplier := r.ResolveOwn(supplierKey, src)

		// Cặp 1 không có giá: lấy line_total / package_quantity
		var derivedPrice *decimal.Decimal
		if i == 1 && priceRaw == "" && lineTotal != nil && row.PackageQuantity != nil {
			d := lineTotal.Div(*row.PackageQuantity).Round(4)
			derivedPrice = &d
		}

		if priceRaw == "" && ownSupplier == "" && derivedPrice == nil {
			continue
		}
		populated = true

		fail := func(field model.FieldKey, format string, args ...any) {
			msg := rowErr(field, format, args...)
			if firstErr == "" {
				firstErr = msg
			}
		}

		var price decimal.Decimal
		switch {
		case derivedPrice != nil:
			price = *derivedPrice
		case priceRaw == "":
			fail(priceKey, "%s is missing", priceKey)
			continue
		default:
			d, err := ParseNumber(priceRaw)
			if err != nil {
				fail(priceKey, "%s %q is not a number", priceKey, priceRaw)
				continue
			}
			if !d.IsPositive() {
				fail(priceKey, "%s %q must be positive", priceKey, priceRaw)
				continue
			}
			price = d
		}

		supplier := r.Resolve(supplierKey, src)
		if supplier == "" {
			fail(supplierKey, "%s is missing", supplierKey)
			continue
		}

		discount := decimal.Zero
		if raw := r.Resolve(discountKey, src); raw != "" {
			d, err := ParseNumber(raw)
			if err != nil || d.IsNegative() || d.GreaterThan(hundred) {
				fail(discountKey, "%s %q must be a number between 0 and 100", discountKey, raw)
				continue
			}
			discount = d
		}

		pairs = append(pairs, Pair{
			Index:              i,
			Price:              price,
			DiscountPercent:    discount,
			Supplier:           supplier,
			SupplierNormalized: utils.NormalizeName(supplier),
		})
	}

	switch {
	case len(pairs) > 0:
		return row, pairs, ""
	case !populated:
		return row, nil, "no valid price found"
	default:
		return row, nil, firstErr
	}
}

func sortedKeys(m map[model.FieldKey]string) []model.FieldKey {
	keys := make([]model.FieldKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedRowIndexes(m model.ManualValuesByRow) []int {
	idx := make([]int, 0, len(m))
	for k := range m {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	return idx
}
