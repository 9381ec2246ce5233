package mapping

import (
	"strings"

	"pricebook-backend/internal/domains/priceimport/header"
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/shared/utils"
)

// derivedMarkers đánh dấu cột tính toán được sinh bởi hệ thống khác (vd: "total_derived")
var derivedMarkers = []string{"derived", "מחושב"}

// AutoHidden trả về các cột nên ẩn khỏi view làm việc: tiêu đề và mọi ô mẫu đều rỗng,
// hoặc tiêu đề kết thúc bằng marker "_derived". Cột đang được map không bao giờ bị ẩn.
func AutoHidden(columns []model.SourceColumn, rows []model.Row, m *model.ImportMapping) []int {
	mapped := map[int]model.FieldKey{}
	if m != nil {
		mapped = m.MappedColumns()
	}

	hidden := []int{}
	for _, col := range columns {
		if _, ok := mapped[col.Index]; ok {
			continue
		}
		if isDerived(col) || isEmptyColumn(col, rows) {
			hidden = append(hidden, col.Index)
		}
	}
	return hidden
}

func isDerived(col model.SourceColumn) bool {
	if col.HeaderValue == nil {
		return false
	}
	key := header.Normalize(*col.HeaderValue)
	for _, marker := range derivedMarkers {
		if key == marker || strings.HasSuffix(key, " "+marker) {
			return true
		}
	}
	return false
}

func isEmptyColumn(col model.SourceColumn, rows []model.Row) bool {
	if col.HeaderValue != nil && !utils.IsBlank(*col.HeaderValue) {
		return false
	}
	for _, r := range rows {
		if !utils.IsBlank(r.Cell(col.Index)) {
			return false
		}
	}
	return true
}
