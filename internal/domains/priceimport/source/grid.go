package source

import (
	"strings"

	"pricebook-backend/internal/domains/priceimport/header"
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/shared/utils"

	"github.com/xuri/excelize/v2"
)

// grid là dữ liệu thô của một sheet (hoặc một bảng PDF) trước khi tách header
type grid struct {
	name       string
	rows       [][]string
	rowNumbers []int // 1-based: số dòng trong sheet, hoặc số trang với PDF
}

// nonBlankRows đếm số dòng có ít nhất một ô không rỗng
func (g grid) nonBlankRows() int {
	n := 0
	for _, r := range g.rows {
		if !isBlankRow(r) {
			n++
		}
	}
	return n
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if !utils.IsBlank(c) {
			return false
		}
	}
	return true
}

func cleanCell(s string) string {
	return strings.TrimSpace(utils.StripBidiMarks(s))
}

// buildTable bỏ dòng rỗng, tách header (nếu có) và lộ ra mọi cột kể cả cột rỗng
func buildTable(g grid, hasHeader bool) model.Table {
	type numbered struct {
		cells []string
		num   int
	}

	var kept []numbered
	for i, r := range g.rows {
		if isBlankRow(r) {
			continue
		}
		cells := make([]string, len(r))
		for j, c := range r {
			cells[j] = cleanCell(c)
		}
		num := i + 1
		if i < len(g.rowNumbers) {
			num = g.rowNumbers[i]
		}
		kept = append(kept, numbered{cells: cells, num: num})
	}

	var headerCells []string
	if hasHeader && len(kept) > 0 {
		headerCells = kept[0].cells
		kept = kept[1:]
	}

	width := len(headerCells)
	for _, r := range kept {
		width = max(width, len(r.cells))
	}

	table := model.Table{
		Columns: buildColumns(width, headerCells, hasHeader),
		Rows:    make([]model.Row, len(kept)),
	}
	for i, r := range kept {
		table.Rows[i] = model.Row{Index: i, SheetRow: r.num, Cells: padCells(r.cells, width)}
	}
	return table
}

func buildColumns(width int, headerCells []string, hasHeader bool) []model.SourceColumn {
	cols := make([]model.SourceColumn, width)
	for i := 0; i < width; i++ {
		cols[i] = model.SourceColumn{Index: i, Letter: columnLetter(i)}
		if !hasHeader || i >= len(headerCells) || headerCells[i] == "" {
			continue
		}
		h := headerCells[i]
		cols[i].HeaderValue = &h
		cols[i].CanonicalLabel = header.CanonicalLabel(h)
	}
	return cols
}

func padCells(cells []string, width int) []string {
	if len(cells) >= width {
		return cells
	}
	out := make([]string, width)
	copy(out, cells)
	return out
}

// columnLetter: 0 -> A, 25 -> Z, 26 -> AA
func columnLetter(index int) string {
	name, err := excelize.ColumnNumberToName(index + 1)
	if err != nil {
		return ""
	}
	return name
}
