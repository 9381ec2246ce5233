package source

import (
	"context"
	"sort"
	"strings"
)

// PDFExtractor tách bảng từ file PDF
type PDFExtractor interface {
	Extract(ctx context.Context, data []byte, pageFrom, pageTo int) (*PDFResult, error)
}

// PDFResult là các bảng thô theo thứ tự trong tài liệu
type PDFResult struct {
	PageCount int        `json:"pageCount"`
	Tables    []RawTable `json:"tables"`
}

// RawTable là một bảng ứng viên; Pages song song với Rows
type RawTable struct {
	Page  int        `json:"page"`
	Rows  [][]string `json:"rows"`
	Pages []int      `json:"pages,omitempty"`
}

// pageWindow chuẩn hóa khoảng trang (1-based, bao gồm hai đầu)
func pageWindow(pageFrom, pageTo, pageCount int) (int, int) {
	from, to := 1, pageCount
	if pageFrom > 0 {
		from = pageFrom
	}
	if pageTo > 0 && pageTo < to {
		to = pageTo
	}
	return from, to
}

// ========================================
// TABLE SEGMENTATION (text-based PDF)
// ========================================

// textRun là một đoạn text đặt tại toạ độ X trên một dòng
type textRun struct {
	X, W     float64
	FontSize float64
	S        string
}

type pdfCell struct {
	x    float64
	text string
}

const (
	// khoảng trống > cellGapFactor * fontSize => sang ô mới
	cellGapFactor = 1.2
	// khoảng trống > wordGapFactor * fontSize => chèn dấu cách
	wordGapFactor = 0.2

	minTableRows = 2
	minTableCols = 2
)

// lineCells gộp các textRun gần nhau thành ô
func lineCells(runs []textRun) []pdfCell {
	sorted := make([]textRun, 0, len(runs))
	for _, r := range runs {
		if r.S != "" {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var (
		cells []pdfCell
		b     strings.Builder
		start float64
		end   float64
	)
	flush := func() {
		if text := strings.TrimSpace(b.String()); text != "" {
			cells = append(cells, pdfCell{x: start, text: strings.Join(strings.Fields(text), " ")})
		}
		b.Reset()
	}

	for i, r := range sorted {
		if i == 0 {
			start, end = r.X, r.X+r.W
			b.WriteString(r.S)
			continue
		}

		fs := r.FontSize
		if fs <= 0 {
			fs = 1
		}
		gap := r.X - end
		if gap > cellGapFactor*fs {
			flush()
			start = r.X
		} else if gap > wordGapFactor*fs {
			b.WriteByte(' ')
		}
		b.WriteString(r.S)
		end = max(end, r.X+r.W)
	}
	flush()
	return cells
}

// segmentPage tìm các bảng trên một trang: chuỗi dòng liên tiếp có >= 2 ô.
// Ô của các dòng sau được căn theo anchor X của dòng đầu bảng.
func segmentPage(page int, lines [][]textRun) []RawTable {
	var (
		tables []RawTable
		run    [][]pdfCell
	)
	closeRun := func() {
		if len(run) >= minTableRows {
			tables = append(tables, alignRun(page, run))
		}
		run = nil
	}

	for _, line := range lines {
		cells := lineCells(line)
		if len(cells) >= minTableCols {
			run = append(run, cells)
			continue
		}
		closeRun()
	}
	closeRun()
	return tables
}

func alignRun(page int, run [][]pdfCell) RawTable {
	anchors := make([]float64, len(run[0]))
	for i, c := range run[0] {
		anchors[i] = c.x
	}

	t := RawTable{Page: page}
	for _, cells := range run {
		row := make([]string, len(anchors))
		for _, c := range cells {
			col := nearestAnchor(anchors, c.x)
			if row[col] != "" {
				row[col] += " " + c.text
			} else {
				row[col] = c.text
			}
		}
		t.Rows = append(t.Rows, row)
		t.Pages = append(t.Pages, page)
	}
	return t
}

func nearestAnchor(anchors []float64, x float64) int {
	best := 0
	bestDist := -1.0
	for i, a := range anchors {
		d := a - x
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
