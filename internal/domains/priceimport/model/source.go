package model

// SourceType là loại nguồn người dùng khai báo
type SourceType string

const (
	SourceExcel SourceType = "excel" // xlsx, xls, csv
	SourcePDF   SourceType = "pdf"
)

// FileKind là định dạng thực tế phát hiện từ magic bytes
type FileKind string

const (
	KindXLSX FileKind = "xlsx"
	KindXLS  FileKind = "xls"
	KindCSV  FileKind = "csv"
	KindPDF  FileKind = "pdf"
)

func (k FileKind) SourceType() SourceType {
	if k == KindPDF {
		return SourcePDF
	}
	return SourceExcel
}

const (
	// AutoSheet chọn sheet có nhiều dòng không rỗng nhất
	AutoSheet = -1
	// MergedTables là view gộp mọi bảng của PDF
	MergedTables = -1
	// TableSampleRows là số dòng mẫu trả về cho mỗi bảng PDF
	TableSampleRows = 5
)

// SourceColumn là một cột phát hiện được trong bảng nguồn
type SourceColumn struct {
	Index          int     `json:"index"`
	Letter         string  `json:"letter"`
	HeaderValue    *string `json:"headerValue"`
	CanonicalLabel string  `json:"canonicalLabel,omitempty"`
}

// Row là một dòng dữ liệu (không tính header, không rỗng hoàn toàn)
type Row struct {
	Index    int      `json:"index"`    // 0-based trong bảng được chọn
	SheetRow int      `json:"sheetRow"` // số dòng trong sheet, hoặc số trang với PDF
	Cells    []string `json:"cells"`
}

// Cell trả về ô tại col, rỗng nếu dòng ngắn hơn
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

// Table là bảng 2 chiều đã chọn (sheet hoặc bảng PDF)
type Table struct {
	Columns []SourceColumn `json:"columns"`
	Rows    []Row          `json:"rows"`
}

// SourceTable là một bảng ứng viên trong PDF
type SourceTable struct {
	TableIndex int            `json:"tableIndex"`
	PageStart  int            `json:"pageStart"`
	Columns    []SourceColumn `json:"columns"`
	SampleRows [][]string     `json:"sampleRows"`
	RowCount   int            `json:"rowCount"`
}

// SheetInfo mô tả một sheet của workbook
type SheetInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}

// ReadOptions điều khiển việc đọc nguồn
type ReadOptions struct {
	SourceType SourceType `json:"sourceType,omitempty"`
	SheetIndex int        `json:"sheetIndex"`
	TableIndex int        `json:"tableIndex"`
	HasHeader  bool       `json:"hasHeader"`
	PageFrom   int        `json:"pageFrom,omitempty"` // 1-based, 0 = từ đầu
	PageTo     int        `json:"pageTo,omitempty"`   // 1-based, 0 = đến hết
}

// Document là kết quả đọc một file
type Document struct {
	Kind          FileKind      `json:"kind"`
	Sheets        []SheetInfo   `json:"sheets,omitempty"`
	SelectedSheet int           `json:"selectedSheet"`
	Tables        []SourceTable `json:"tables,omitempty"`
	SelectedTable int           `json:"selectedTable"`
	PageCount     int           `json:"pageCount,omitempty"`
	Table         Table         `json:"table"`
	Warnings      []string      `json:"warnings,omitempty"`
}
