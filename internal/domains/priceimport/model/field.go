package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKey là định danh chuẩn của một thuộc tính catalog mà cột có thể map vào
type FieldKey string

const (
	FieldProductName      FieldKey = "product_name"
	FieldSKU              FieldKey = "sku"
	FieldBarcode          FieldKey = "barcode"
	FieldCategory         FieldKey = "category"
	FieldPricingUnit      FieldKey = "pricing_unit"
	FieldPackageQuantity  FieldKey = "package_quantity"
	FieldPackageType      FieldKey = "package_type"
	FieldLineTotal        FieldKey = "line_total"
	FieldPriceIncludesVAT FieldKey = "source_price_includes_vat"
	FieldVATRate          FieldKey = "vat_rate"
	FieldCurrency         FieldKey = "currency"
)

// SingularFields theo thứ tự ưu tiên khi infer
var SingularFields = []FieldKey{
	FieldProductName,
	FieldSKU,
	FieldBarcode,
	FieldCategory,
	FieldPricingUnit,
	FieldPackageQuantity,
	FieldPackageType,
	FieldLineTotal,
	FieldPriceIncludesVAT,
	FieldVATRate,
	FieldCurrency,
}

// SlotKind là thành phần của một cặp supplier/price
type SlotKind string

const (
	SlotPrice    SlotKind = "price"
	SlotSupplier SlotKind = "supplier"
	SlotDiscount SlotKind = "discount_percent"
)

var SlotKinds = []SlotKind{SlotPrice, SlotSupplier, SlotDiscount}

const (
	// MinPairCount là số cặp tối thiểu luôn hiển thị cho người dùng
	MinPairCount = 3
	// MaxPairCount giới hạn số cặp để tránh mapping vô hạn
	MaxPairCount = 50
)

// PairKey trả về field key dạng price_2, supplier_2, discount_percent_2
func PairKey(kind SlotKind, index int) FieldKey {
	return FieldKey(fmt.Sprintf("%s_%d", kind, index))
}

// ParsedKey là kết quả phân tích một field key
type ParsedKey struct {
	Key   FieldKey
	Kind  SlotKind // rỗng với singular field
	Index int      // 1-based, 0 với singular field
}

func (p ParsedKey) IsPair() bool { return p.Kind != "" }

// ParseFieldKey nhận diện singular field hoặc pair field
func ParseFieldKey(raw string) (ParsedKey, bool) {
	key := FieldKey(raw)
	for _, f := range SingularFields {
		if f == key {
			return ParsedKey{Key: key}, true
		}
	}

	for _, kind := range SlotKinds {
		prefix := string(kind) + "_"
		if !strings.HasPrefix(raw, prefix) {
			continue
		}
		suffix := raw[len(prefix):]
		if suffix == "" || suffix[0] == '0' {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 || n > MaxPairCount {
			continue
		}
		return ParsedKey{Key: key, Kind: kind, Index: n}, true
	}

	return ParsedKey{}, false
}
