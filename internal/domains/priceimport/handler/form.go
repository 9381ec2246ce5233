package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/domains/priceimport/service"

	"github.com/gin-gonic/gin"
)

// multipartOverhead là phần dư cho các field form ngoài file
const multipartOverhead = 1 << 20

var errFileTooLarge = errors.New("file too large")

// requestError - field JSON trong form không decode được
type requestError struct {
	field string
	err   error
}

func (e *requestError) Error() string { return e.field + ": " + e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

// importForm - các field của multipart form. Field phức tạp là chuỗi JSON.
type importForm struct {
	SourceType  string `form:"sourceType"`
	SheetIndex  *int   `form:"sheetIndex"`
	TableIndex  *int   `form:"tableIndex"`
	HasHeader   *bool  `form:"hasHeader"`
	PageFrom    int    `form:"pageFrom"`
	PageTo      int    `form:"pageTo"`
	PreviewPage int    `form:"previewPage"`

	Mapping            string `form:"mapping"`
	IgnoredRows        string `form:"ignoredRows"`
	ManualSupplierName string `form:"manualSupplierName"`
	ManualValuesByRow  string `form:"manualValuesByRow"`
	ManualGlobalValues string `form:"manualGlobalValues"`
	ManualColumns      string `form:"manualColumns"`

	Mode         string `form:"mode"`
	Confirmation string `form:"confirmation"`
}

// readOptions áp dụng giá trị mặc định: sheet tự chọn, bảng PDF gộp, có header
func (f importForm) readOptions() model.ReadOptions {
	opts := model.ReadOptions{
		SourceType: model.SourceType(f.SourceType),
		SheetIndex: model.AutoSheet,
		TableIndex: model.MergedTables,
		HasHeader:  true,
		PageFrom:   f.PageFrom,
		PageTo:     f.PageTo,
	}
	if f.SheetIndex != nil {
		opts.SheetIndex = *f.SheetIndex
	}
	if f.TableIndex != nil {
		opts.TableIndex = *f.TableIndex
	}
	if f.HasHeader != nil {
		opts.HasHeader = *f.HasHeader
	}
	return opts
}

// validateRequest decode mapping + overrides từ các field JSON
func (f importForm) validateRequest() (model.ValidateRequest, error) {
	req := model.ValidateRequest{
		ReadOptions: f.readOptions(),
		Overrides:   model.Overrides{ManualSupplierName: f.ManualSupplierName},
	}

	if f.Mapping != "" {
		mapping := model.NewImportMapping()
		if err := json.Unmarshal([]byte(f.Mapping), mapping); err != nil {
			var mErr *model.MappingError
			if errors.As(err, &mErr) {
				return req, mErr
			}
			return req, &requestError{field: "mapping", err: err}
		}
		req.Mapping = mapping
	}

	fields := []struct {
		name string
		raw  string
		dst  any
	}{
		{"ignoredRows", f.IgnoredRows, &req.IgnoredRows},
		{"manualValuesByRow", f.ManualValuesByRow, &req.ByRow},
		{"manualGlobalValues", f.ManualGlobalValues, &req.Global},
		{"manualColumns", f.ManualColumns, &req.Columns},
	}
	for _, field := range fields {
		if field.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(field.raw), field.dst); err != nil {
			return req, &requestError{field: field.name, err: err}
		}
	}
	return req, nil
}

// readUpload đọc field "file" và giới hạn kích thước
func readUpload(c *gin.Context, maxBytes int64) (service.File, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.File{}, errFileTooLarge
		}
		return service.File{}, fmt.Errorf("file is required (multipart/form-data): %w", err)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return service.File{}, errFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return service.File{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return service.File{}, fmt.Errorf("failed to read file: %w", err)
	}
	return service.File{Name: fh.Filename, Data: data}, nil
}
