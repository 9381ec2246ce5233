package source

import (
	"bytes"

	"pricebook-backend/internal/domains/priceimport/model"
)

var (
	magicPDF  = []byte("%PDF")
	magicZip  = []byte{'P', 'K', 0x03, 0x04}
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// DetectKind nhận diện định dạng file bằng magic bytes; không khớp => CSV
func DetectKind(data []byte) model.FileKind {
	head := bytes.TrimLeft(data[:min(len(data), 1024)], "\xef\xbb\xbf \t\r\n")
	switch {
	case bytes.HasPrefix(head, magicPDF):
		return model.KindPDF
	case bytes.HasPrefix(data, magicZip):
		return model.KindXLSX
	case bytes.HasPrefix(data, magicOLE2):
		return model.KindXLS
	default:
		return model.KindCSV
	}
}
