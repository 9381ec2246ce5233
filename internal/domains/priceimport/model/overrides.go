package model

// ManualColumn là cột tổng hợp không có trong file.
// Giá trị theo dòng ưu tiên hơn BulkValue.
type ManualColumn struct {
	ID        string         `json:"id"`
	FieldKey  FieldKey       `json:"fieldKey"`
	Values    map[int]string `json:"values,omitempty"`
	BulkValue string         `json:"bulkValue,omitempty"`
}

// ManualValuesByRow: rowIndex -> fieldKey -> value. Chuỗi rỗng = dùng lại giá trị gốc.
type ManualValuesByRow map[int]map[FieldKey]string

// ManualGlobalValues áp dụng cho mọi dòng không bị ignore
type ManualGlobalValues map[FieldKey]string

// Overrides gom mọi giá trị người dùng nhập tay cho một lần import
type Overrides struct {
	ByRow              ManualValuesByRow  `json:"manualValuesByRow,omitempty"`
	Global             ManualGlobalValues `json:"manualGlobalValues,omitempty"`
	Columns            []ManualColumn     `json:"manualColumns,omitempty"`
	IgnoredRows        []int              `json:"ignoredRows,omitempty"`
	ManualSupplierName string             `json:"manualSupplierName,omitempty"`
}

// IgnoredSet trả về ignoredRows dạng set
func (o Overrides) IgnoredSet() map[int]bool {
	set := make(map[int]bool, len(o.IgnoredRows))
	for _, r := range o.IgnoredRows {
		set[r] = true
	}
	return set
}

// ApplyToAll ghi value cho key vào Global và vào từng dòng trong rows (bỏ qua dòng bị ignore).
// value rỗng gỡ override ở cả hai nơi.
func (o *Overrides) ApplyToAll(key FieldKey, value string, rows []int) {
	if o.Global == nil {
		o.Global = ManualGlobalValues{}
	}
	if o.ByRow == nil {
		o.ByRow = ManualValuesByRow{}
	}

	if value == "" {
		delete(o.Global, key)
	} else {
		o.Global[key] = value
	}

	ignored := o.IgnoredSet()
	for _, r := range rows {
		if ignored[r] {
			continue
		}
		if value == "" {
			if vals, ok := o.ByRow[r]; ok {
				delete(vals, key)
				if len(vals) == 0 {
					delete(o.ByRow, r)
				}
			}
			continue
		}
		if o.ByRow[r] == nil {
			o.ByRow[r] = map[FieldKey]string{}
		}
		o.ByRow[r][key] = value
	}
}
