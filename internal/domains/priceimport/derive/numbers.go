package derive

import (
	"errors"
	"strings"

	"pricebook-backend/internal/shared/utils"

	"github.com/shopspring/decimal"
)

var errNotNumber = errors.New("not a number")

// currencyMarks bị bỏ khi parse số; so khớp không phân biệt hoa thường
var currencyMarks = []string{`ש"ח`, "ש״ח", "שח", "₪", "$", "€", "nis", "ils", "usd", "eur"}

// ParseNumber chấp nhận dấu phân cách hàng nghìn, dấu phẩy thập phân, ký hiệu tiền tệ và %
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.ToLower(utils.StripBidiMarks(raw))
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '%', '\'', '\u2019':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, errNotNumber
	}

	s = normalizeSeparators(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	return d, nil
}

func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		// ký tự xuất hiện sau cùng là dấu thập phân
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		i := strings.Index(s, ",")
		if len(s)-i-1 == 3 && i > 0 {
			// "1,500" là hàng nghìn
			return strings.Replace(s, ",", "", 1)
		}
		return strings.Replace(s, ",", ".", 1)
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

var (
	trueWords  = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "v": true, "x": true, "✓": true, "✔": true, "כן": true, "כולל": true, "incl": true, "included": true}
	falseWords = map[string]bool{"0": true, "false": true, "no": true, "n": true, "לא": true, "לא כולל": true, "excl": true, "excluded": true}
)

// ParseBool nhận các giá trị yes/no thông dụng (Hebrew/English)
func ParseBool(raw string) (bool, bool) {
	s := utils.NormalizeName(utils.StripBidiMarks(raw))
	if trueWords[s] {
		return true, true
	}
	if falseWords[s] {
		return false, true
	}
	return false, false
}

// NormalizeCurrency chuyển ký hiệu thành mã ISO; rỗng => rỗng
func NormalizeCurrency(raw string) string {
	s := strings.TrimSpace(utils.StripBidiMarks(raw))
	switch strings.ToUpper(s) {
	case "":
		return ""
	case "₪", `ש"ח`, "ש״ח", "שח", "NIS", "ILS", "שקל":
		return "ILS"
	case "$", "USD", "דולר":
		return "USD"
	case "€", "EUR", "יורו":
		return "EUR"
	}
	return strings.ToUpper(s)
}
