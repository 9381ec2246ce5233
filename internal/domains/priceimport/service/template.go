package service

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateFormat là định dạng file mẫu
type TemplateFormat string

const (
	TemplateCSV  TemplateFormat = "csv"
	TemplateXLSX TemplateFormat = "xlsx"
)

// TemplateFile là file mẫu trả về cho client
type TemplateFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

var (
	templateHeader = []string{"product_name", "sku", "package_quantity", "supplier", "price", "discount_percent", "category"}
	templateSample = []string{"קולה 1.5 ליטר", "7290000000011", "6", "ספק א", "10.50", "0", "משקאות"}
)

const utf8BOM = "\ufeff"

// Template chỉ để hướng dẫn người dùng; pipeline không phụ thuộc vào nó
func (s *importService) Template(format TemplateFormat) (*TemplateFile, error) {
	switch format {
	case "", TemplateCSV:
		return csvTemplate()
	case TemplateXLSX:
		return xlsxTemplate()
	}
	return nil, fmt.Errorf("unsupported template format %q", format)
}

func csvTemplate() (*TemplateFile, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{templateHeader, templateSample}); err != nil {
		return nil, fmt.Errorf("failed to write csv template: %w", err)
	}

	return &TemplateFile{
		FileName:    "price-import-template.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func xlsxTemplate() (*TemplateFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &templateHeader); err != nil {
		return nil, fmt.Errorf("failed to write template header: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &templateSample); err != nil {
		return nil, fmt.Errorf("failed to write template sample: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render xlsx template: %w", err)
	}
	return &TemplateFile{
		FileName:    "price-import-template.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}
