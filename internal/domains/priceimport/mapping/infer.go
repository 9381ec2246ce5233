// Package mapping đề xuất và chỉnh sửa ImportMapping (field key -> cột).
package mapping

import (
	"pricebook-backend/internal/domains/priceimport/header"
	"pricebook-backend/internal/domains/priceimport/model"
)

var singularByConcept = map[header.Concept]model.FieldKey{
	header.ConceptName:             model.FieldProductName,
	header.ConceptSKU:              model.FieldSKU,
	header.ConceptBarcode:          model.FieldBarcode,
	header.ConceptCategory:         model.FieldCategory,
	header.ConceptUnit:             model.FieldPricingUnit,
	header.ConceptPackageQuantity:  model.FieldPackageQuantity,
	header.ConceptPackageType:      model.FieldPackageType,
	header.ConceptLineTotal:        model.FieldLineTotal,
	header.ConceptPriceIncludesVAT: model.FieldPriceIncludesVAT,
	header.ConceptVATRate:          model.FieldVATRate,
	header.ConceptCurrency:         model.FieldCurrency,
}

// Infer đề xuất mapping từ tiêu đề cột. Singular field được ưu tiên; các khái niệm
// lặp lại (price, supplier, discount) lần lượt vào cặp 1, 2, 3...
// Mapping trả về luôn có ít nhất MinPairCount cặp.
func Infer(columns []model.SourceColumn) *model.ImportMapping {
	m := model.NewImportMapping()

	concepts := make([]header.Concept, len(columns))
	hasBuyPrice := false
	for i, col := range columns {
		if col.HeaderValue == nil {
			continue
		}
		if c, ok := header.Detect(*col.HeaderValue); ok {
			concepts[i] = c
			if c == header.ConceptPrice || c == header.ConceptCostPrice {
				hasBuyPrice = true
			}
		}
	}

	// 1. Singular fields
	for i, c := range concepts {
		key, ok := singularByConcept[c]
		if !ok || m.Get(key).Mapped() {
			continue
		}
		_ = m.Assign(key, columns[i].Index)
	}

	// 2. Pair fields theo thứ tự cột
	next := map[model.SlotKind]int{}
	for i, c := range concepts {
		var kind model.SlotKind
		switch c {
		case header.ConceptPrice, header.ConceptCostPrice:
			kind = model.SlotPrice
		case header.ConceptSellPrice:
			// Giá bán chỉ dùng khi file không có giá mua
			if hasBuyPrice {
				continue
			}
			kind = model.SlotPrice
		case header.ConceptSupplier:
			kind = model.SlotSupplier
		case header.ConceptDiscount:
			kind = model.SlotDiscount
		default:
			continue
		}
		if next[kind] >= model.MaxPairCount {
			continue
		}
		next[kind]++
		_ = m.Assign(model.PairKey(kind, next[kind]), columns[i].Index)
	}

	if !m.Get(model.FieldProductName).Set {
		_ = m.Unmap(model.FieldProductName)
	}
	_ = m.SetPairCount(SuggestedPairCount(m))
	return m
}

// SuggestedPairCount = max(MinPairCount, pair index lớn nhất đang dùng)
func SuggestedPairCount(m *model.ImportMapping) int {
	n := m.PairCount()
	if n < model.MinPairCount {
		return model.MinPairCount
	}
	return n
}
