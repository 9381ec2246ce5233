package source

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// readXLS đọc workbook Excel 97-2003 (.xls)
func readXLS(data []byte) (grids []grid, err error) {
	// Thư viện xls có thể panic với file hỏng
	defer func() {
		if r := recover(); r != nil {
			grids, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		g := grid{name: sheet.Name}
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				g.rows = append(g.rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			g.rows = append(g.rows, cells)
		}
		grids = append(grids, g)
	}
	return grids, nil
}
