// Package source đọc file bảng giá (xlsx, xls, csv, pdf) thành bảng 2 chiều.
package source

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"pricebook-backend/internal/domains/priceimport/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Reader đọc file và chọn sheet/bảng theo options
type Reader interface {
	Read(ctx context.Context, data []byte, opts model.ReadOptions) (*model.Document, error)
}

// FileReader là Reader mặc định. Việc parse tốn CPU nên bị giới hạn bởi semaphore.
type FileReader struct {
	pdf PDFExtractor
	sem *semaphore.Weighted
}

// NewFileReader: maxConcurrent <= 0 => GOMAXPROCS
func NewFileReader(pdf PDFExtractor, maxConcurrent int) *FileReader {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	if pdf == nil {
		pdf = NewLocalPDFExtractor()
	}
	return &FileReader{
		pdf: pdf,
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (r *FileReader) Read(ctx context.Context, data []byte, opts model.ReadOptions) (*model.Document, error) {
	if len(data) == 0 {
		return nil, model.NewParseError("file is empty", model.ErrEmptyFile)
	}

	kind := DetectKind(data)
	if opts.SourceType != "" && opts.SourceType != kind.SourceType() {
		return nil, model.NewParseError(
			fmt.Sprintf("file content is %s but sourceType is %s", kind, opts.SourceType), model.ErrUnsupportedFile)
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	var (
		doc *model.Document
		err error
	)
	if kind == model.KindPDF {
		doc, err = r.readPDF(ctx, data, opts)
	} else {
		doc, err = r.readWorkbook(kind, data, opts)
	}
	if err != nil {
		var pErr *model.ParseError
		if errors.As(err, &pErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, model.NewParseError(fmt.Sprintf("could not read %s file", kind), err)
	}

	log.Debug().
		Str("kind", string(kind)).
		Int("columns", len(doc.Table.Columns)).
		Int("rows", len(doc.Table.Rows)).
		Msg("Source file read")

	return doc, nil
}

func (r *FileReader) readWorkbook(kind model.FileKind, data []byte, opts model.ReadOptions) (*model.Document, error) {
	var (
		grids []grid
		err   error
	)
	switch kind {
	case model.KindXLSX:
		grids, err = readXLSX(data)
	case model.KindXLS:
		grids, err = readXLS(data)
	default:
		grids, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	if len(grids) == 0 {
		return nil, model.NewParseError("workbook has no sheets", model.ErrEmptyFile)
	}

	doc := &model.Document{Kind: kind, SelectedTable: model.MergedTables}
	best := 0
	for i, g := range grids {
		n := g.nonBlankRows()
		doc.Sheets = append(doc.Sheets, model.SheetInfo{Index: i, Name: g.name, RowCount: n})
		if n > doc.Sheets[best].RowCount {
			best = i
		}
	}

	selected := opts.SheetIndex
	switch {
	case selected == model.AutoSheet:
		selected = best
	case selected < 0 || selected >= len(grids):
		return nil, model.NewParseError(
			fmt.Sprintf("sheet index %d out of range (workbook has %d sheets)", selected, len(grids)), nil)
	}

	doc.SelectedSheet = selected
	doc.Table = buildTable(grids[selected], opts.HasHeader)
	if len(doc.Table.Rows) == 0 {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("sheet %q has no data rows", grids[selected].name))
	}
	return doc, nil
}

func (r *FileReader) readPDF(ctx context.Context, data []byte, opts model.ReadOptions) (*model.Document, error) {
	res, err := r.pdf.Extract(ctx, data, opts.PageFrom, opts.PageTo)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		Kind:          model.KindPDF,
		SelectedSheet: 0,
		SelectedTable: opts.TableIndex,
		PageCount:     res.PageCount,
		Tables:        describeTables(res.Tables, opts.HasHeader),
	}
	if len(res.Tables) == 0 {
		doc.SelectedTable = model.MergedTables
		doc.Warnings = append(doc.Warnings, "no tables detected in the selected pages")
		return doc, nil
	}

	doc.Table, err = selectPDFTable(res.Tables, opts.TableIndex, opts.HasHeader)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
