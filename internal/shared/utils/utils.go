package utils

import (
	"strings"
	"unicode"
)

// NormalizeName dùng làm khóa so sánh cho tên sản phẩm / nhà cung cấp / danh mục:
// trim, lowercase, gộp khoảng trắng liên tiếp
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// CollapseSpaces trim và gộp khoảng trắng nhưng giữ nguyên hoa/thường
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsBlank - true nếu chuỗi chỉ gồm khoảng trắng (kể cả NBSP, RLM/LRM)
func IsBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) && !isBidiMark(r) {
			return false
		}
	}
	return true
}

// StripBidiMarks loại bỏ các ký tự điều hướng văn bản thường gặp trong file tiếng Hebrew
func StripBidiMarks(s string) string {
	if !strings.ContainsFunc(s, isBidiMark) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isBidiMark(r) {
			return -1
		}
		return r
	}, s)
}

func isBidiMark(r rune) bool {
	switch r {
	case '\u200e', '\u200f', '\u202a', '\u202b', '\u202c', '\u202d', '\u202e', '\ufeff':
		return true
	}
	return false
}
