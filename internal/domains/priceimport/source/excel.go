package source

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX đọc mọi sheet của workbook .xlsx
func readXLSX(data []byte) ([]grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	grids := make([]grid, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		grids = append(grids, grid{name: name, rows: rows})
	}
	return grids, nil
}
