// Package header nhận diện tiêu đề cột (Hebrew/English) để hiển thị và gợi ý mapping.
// Kết quả chỉ mang tính tham khảo, không bao giờ quyết định validate hay apply.
package header

import (
	"strings"
	"unicode/utf8"

	"pricebook-backend/internal/shared/utils"
)

// Concept là khái niệm chuẩn mà một tiêu đề cột biểu diễn
type Concept string

const (
	ConceptName             Concept = "name"
	ConceptSupplier         Concept = "supplier"
	ConceptPrice            Concept = "price"
	ConceptCostPrice        Concept = "cost_price"
	ConceptSellPrice        Concept = "sell_price"
	ConceptSKU              Concept = "sku"
	ConceptBarcode          Concept = "barcode"
	ConceptCategory         Concept = "category"
	ConceptUnit             Concept = "unit"
	ConceptPackageQuantity  Concept = "package_quantity"
	ConceptPackageType      Concept = "package_type"
	ConceptLineTotal        Concept = "line_total"
	ConceptPriceIncludesVAT Concept = "price_includes_vat"
	ConceptVATRate          Concept = "vat_rate"
	ConceptDiscount         Concept = "discount"
	ConceptCurrency         Concept = "currency"
	ConceptEffectiveDate    Concept = "effective_date"
)

type conceptDef struct {
	concept  Concept
	label    string
	synonyms []string
}

// Thứ tự = thứ tự kiểm tra containment: khái niệm cụ thể hơn đứng trước
var concepts = []conceptDef{
	{ConceptPriceIncludesVAT, `כולל מע"מ`, []string{
		"includes vat", "incl vat", "including vat", "vat included", "gross",
		`כולל מע"מ`, "כולל מעמ",
	}},
	{ConceptVATRate, `שיעור מע"מ`, []string{
		"vat rate", "vat %", "vat", "tax rate", "tax",
		`מע"מ`, "מעמ", `שיעור מע"מ`, `אחוז מע"מ`,
	}},
	{ConceptCostPrice, "מחיר עלות", []string{
		"cost price", "cost", "purchase price", "buy price", "net price",
		"מחיר עלות", "עלות", "מחיר קניה", "מחיר קנייה", "מחיר נטו",
	}},
	{ConceptSellPrice, "מחיר מכירה", []string{
		"sell price", "selling price", "sale price", "retail price", "list price", "msrp",
		"מחיר מכירה", "מחיר לצרכן", "מחיר קטלוגי",
	}},
	{ConceptLineTotal, `סה"כ`, []string{
		"line total", "total", "amount", "sum", "total price",
		`סה"כ`, "סהכ", "סכום", `סה"כ שורה`,
	}},
	{ConceptDiscount, "הנחה %", []string{
		"discount", "discount %", "discount percent", "disc",
		"הנחה", "אחוז הנחה", "% הנחה",
	}},
	{ConceptPackageQuantity, "כמות באריזה", []string{
		"package quantity", "pack qty", "pack size", "units per pack", "quantity", "qty",
		"כמות באריזה", "כמות", "יחידות באריזה",
	}},
	{ConceptPackageType, "סוג אריזה", []string{
		"package type", "pack type", "packaging", "package",
		"סוג אריזה", "אריזה",
	}},
	{ConceptCurrency, "מטבע", []string{
		"currency", "curr",
		"מטבע",
	}},
	{ConceptEffectiveDate, "תאריך תחולה", []string{
		"effective date", "valid from", "date", "price date",
		"תאריך תחולה", "תאריך", "בתוקף מ",
	}},
	{ConceptBarcode, "ברקוד", []string{
		"barcode", "ean", "upc", "gtin",
		"ברקוד",
	}},
	{ConceptSKU, `מק"ט`, []string{
		"sku", "catalog number", "item code", "product code", "code", "part number", "cat no",
		`מק"ט`, "מקט", "קוד פריט", "קוד מוצר", "מספר קטלוגי", "קוד",
	}},
	{ConceptCategory, "קטגוריה", []string{
		"category", "group", "department", "family",
		"קטגוריה", "קבוצה", "מחלקה", "משפחה",
	}},
	{ConceptSupplier, "ספק", []string{
		"supplier", "supplier name", "vendor", "manufacturer",
		"ספק", "שם ספק", "שם הספק", "יצרן",
	}},
	{ConceptPrice, "מחיר", []string{
		"price", "unit price", "price per unit",
		"מחיר", "מחיר ליחידה",
	}},
	{ConceptUnit, "יחידת מידה", []string{
		"unit", "uom", "unit of measure", "pricing unit",
		"יחידה", "יחידת מידה", "יח'", "יח",
	}},
	{ConceptName, "שם המוצר", []string{
		"product name", "product", "name", "item", "item name", "description", "product description",
		"שם", "שם מוצר", "שם המוצר", "תיאור", "פריט", "מוצר",
	}},
}

const minContainLength = 3

// Tiêu đề chứa từ "giá" thì VAT/supplier chỉ là định ngữ: "מחיר ספק", "Price excl. VAT" vẫn là cột giá
var priceWords = []string{"price", "מחיר"}

var priceQualifiers = map[Concept]bool{
	ConceptPriceIncludesVAT: true,
	ConceptVATRate:          true,
	ConceptSupplier:         true,
}

var (
	exact  = map[string]Concept{}
	labels = map[Concept]string{}
)

func init() {
	for _, def := range concepts {
		labels[def.concept] = def.label
		for _, syn := range def.synonyms {
			key := Normalize(syn)
			if _, taken := exact[key]; !taken {
				exact[key] = def.concept
			}
		}
	}
}

// Normalize: lowercase, `_`/`-`/`.` thành khoảng trắng, bỏ `:` `*` và dấu nháy, gộp khoảng trắng
func Normalize(raw string) string {
	s := strings.ToLower(utils.StripBidiMarks(raw))
	s = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '/':
			return ' '
		case ':', '*', '"', '\'', '`', '״', '׳', '(', ')', '[', ']':
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Detect trả về khái niệm của tiêu đề: khớp chính xác trước, sau đó chứa synonym đủ dài (theo từ)
func Detect(raw string) (Concept, bool) {
	key := Normalize(raw)
	if key == "" {
		return "", false
	}
	if c, ok := exact[key]; ok {
		return c, true
	}
	padded := " " + key + " "
	priced := hasWord(padded, priceWords)
	for _, def := range concepts {
		if priced && priceQualifiers[def.concept] {
			continue
		}
		for _, syn := range def.synonyms {
			n := Normalize(syn)
			if utf8.RuneCountInString(n) < minContainLength {
				continue
			}
			if strings.Contains(padded, " "+n+" ") {
				return def.concept, true
			}
		}
	}
	return "", false
}

func hasWord(padded string, words []string) bool {
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

// CanonicalLabel dùng cho column picker. Không nhận diện được => trả về tiêu đề gốc đã trim.
func CanonicalLabel(raw string) string {
	if c, ok := Detect(raw); ok {
		return labels[c]
	}
	return strings.TrimSpace(raw)
}
