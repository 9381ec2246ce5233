package source

import "pricebook-backend/internal/domains/priceimport/model"

// Page là một trang dòng mẫu của preview
type Page struct {
	Rows       []model.Row
	Page       int
	PageSize   int
	TotalRows  int
	TotalPages int
	Offset     int
}

// Paginate cắt rows theo trang (1-based). page bị kẹp vào [1, TotalPages]; TotalPages >= 1.
func Paginate(rows []model.Row, page, size int) Page {
	if size <= 0 {
		size = 50
	}
	total := len(rows)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	offset := (page - 1) * size
	end := min(offset+size, total)
	out := []model.Row{}
	if offset < end {
		out = rows[offset:end]
	}

	return Page{
		Rows:       out,
		Page:       page,
		PageSize:   size,
		TotalRows:  total,
		TotalPages: pages,
		Offset:     offset,
	}
}
