package source

import (
	"fmt"

	"pricebook-backend/internal/domains/priceimport/header"
	"pricebook-backend/internal/domains/priceimport/model"
)

// describeTables tạo danh sách bảng ứng viên kèm vài dòng mẫu
func describeTables(raw []RawTable, hasHeader bool) []model.SourceTable {
	out := make([]model.SourceTable, 0, len(raw))
	for i, t := range raw {
		table := buildTable(rawGrid(t), hasHeader)

		samples := make([][]string, 0, model.TableSampleRows)
		for _, r := range table.Rows {
			if len(samples) == model.TableSampleRows {
				break
			}
			samples = append(samples, r.Cells)
		}

		out = append(out, model.SourceTable{
			TableIndex: i,
			PageStart:  t.Page,
			Columns:    table.Columns,
			SampleRows: samples,
			RowCount:   len(table.Rows),
		})
	}
	return out
}

func rawGrid(t RawTable) grid {
	g := grid{name: fmt.Sprintf("page %d", t.Page), rows: t.Rows, rowNumbers: t.Pages}
	if len(g.rowNumbers) != len(g.rows) {
		g.rowNumbers = make([]int, len(g.rows))
		for i := range g.rowNumbers {
			g.rowNumbers[i] = t.Page
		}
	}
	return g
}

// selectPDFTable trả về bảng tableIndex, hoặc view gộp khi tableIndex = MergedTables
func selectPDFTable(raw []RawTable, tableIndex int, hasHeader bool) (model.Table, error) {
	if tableIndex == model.MergedTables {
		return buildTable(mergeTables(raw, hasHeader), hasHeader), nil
	}
	if tableIndex < 0 || tableIndex >= len(raw) {
		return model.Table{}, model.NewParseError(
			fmt.Sprintf("table index %d out of range (document has %d tables)", tableIndex, len(raw)), nil)
	}
	return buildTable(rawGrid(raw[tableIndex]), hasHeader), nil
}

// mergeTables nối mọi bảng theo thứ tự tài liệu. Với hasHeader, dòng header của bảng
// đầu tiên được giữ một lần; các dòng lặp lại đúng header đó (do ngắt trang) bị bỏ.
func mergeTables(raw []RawTable, hasHeader bool) grid {
	merged := grid{name: "all tables"}

	var headerKey string
	headerSeen := false
	for _, t := range raw {
		g := rawGrid(t)
		for i, r := range g.rows {
			if isBlankRow(r) {
				continue
			}
			if hasHeader {
				key := rowKey(r)
				if !headerSeen {
					headerKey, headerSeen = key, true
				} else if key == headerKey {
					continue
				}
			}
			merged.rows = append(merged.rows, r)
			merged.rowNumbers = append(merged.rowNumbers, g.rowNumbers[i])
		}
	}
	return merged
}

// rowKey so sánh dòng theo nội dung đã chuẩn hóa, bỏ qua ô rỗng ở cuối
func rowKey(cells []string) string {
	end := len(cells)
	for end > 0 && cleanCell(cells[end-1]) == "" {
		end--
	}
	key := ""
	for i := 0; i < end; i++ {
		key += header.Normalize(cells[i]) + "\x1f"
	}
	return key
}
