package source

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/ledongthuc/pdf"
)

// LocalPDFExtractor phát hiện bảng dựa trên vị trí text của PDF có lớp text.
// PDF scan (chỉ có ảnh) cho ra 0 bảng.
type LocalPDFExtractor struct{}

func NewLocalPDFExtractor() *LocalPDFExtractor {
	return &LocalPDFExtractor{}
}

func (e *LocalPDFExtractor) Extract(ctx context.Context, data []byte, pageFrom, pageTo int) (res *PDFResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	res = &PDFResult{PageCount: reader.NumPage()}
	from, to := pageWindow(pageFrom, pageTo, res.PageCount)

	for i := from; i <= to; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("read text of page %d: %w", i, err)
		}

		// Toạ độ Y của PDF tăng từ dưới lên: dòng trên cùng trước
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Position > rows[b].Position })

		lines := make([][]textRun, 0, len(rows))
		for _, row := range rows {
			line := make([]textRun, 0, len(row.Content))
			for _, t := range row.Content {
				line = append(line, textRun{X: t.X, W: t.W, FontSize: t.FontSize, S: t.S})
			}
			lines = append(lines, line)
		}
		res.Tables = append(res.Tables, segmentPage(i, lines)...)
	}

	return res, nil
}
