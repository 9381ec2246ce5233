package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvDelimiters = []rune{',', ';', '\t', '|'}

// readCSV đọc CSV dưới dạng một sheet duy nhất.
// Không phải UTF-8 hợp lệ => giải mã Windows-1255 (Hebrew).
func readCSV(data []byte) ([]grid, error) {
	text, err := decodeCSV(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	// encoding/csv bỏ qua dòng trống nên lấy số dòng thật từ FieldPos
	g := grid{name: "CSV"}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := r.FieldPos(0)
		g.rows = append(g.rows, record)
		g.rowNumbers = append(g.rowNumbers, line)
	}
	return []grid{g}, nil
}

func decodeCSV(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):], nil
	}
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.Windows1255.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1255: %w", err)
	}
	return decoded, nil
}

// sniffDelimiter chọn ký tự phân cách xuất hiện nhiều nhất ở dòng đầu (ngoài dấu nháy)
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	counts := make(map[rune]int, len(csvDelimiters))
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		for _, d := range csvDelimiters {
			if r == d {
				counts[d]++
			}
		}
	}

	best := ','
	for _, d := range csvDelimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}
