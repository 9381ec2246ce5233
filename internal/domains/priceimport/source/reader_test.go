package source

import (
	"context"
	"errors"
	"testing"

	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestReader() *FileReader {
	return NewFileReader(nil, 2)
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, model.KindPDF, DetectKind([]byte("%PDF-1.7 ...")))
	assert.Equal(t, model.KindXLSX, DetectKind([]byte{'P', 'K', 3, 4, 0}))
	assert.Equal(t, model.KindXLS, DetectKind([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}))
	assert.Equal(t, model.KindCSV, DetectKind([]byte("a,b\n1,2")))
}

func TestRead_XLSXAutoSheetAndColumns(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Notes": {{"just a note"}},
		"Prices": {
			{"שם המוצר", "מחיר", "", "ספק"},
			{"קולה", 10.5, "", "ספק א"},
			{"", "", "", ""},
			{"ספרייט", "9", "", "ספק ב"},
		},
	}, "Notes", "Prices")

	doc, err := newTestReader().Read(context.Background(), data, model.ReadOptions{
		SheetIndex: model.AutoSheet,
		HasHeader:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.KindXLSX, doc.Kind)
	assert.Equal(t, 1, doc.SelectedSheet)
	require.Len(t, doc.Sheets, 2)
	assert.Equal(t, "Prices", doc.Sheets[1].Name)

	// cột rỗng vẫn được lộ ra
	require.Len(t, doc.Table.Columns, 4)
	assert.Equal(t, "A", doc.Table.Columns[0].Letter)
	assert.Equal(t, "D", doc.Table.Columns[3].Letter)
	assert.Nil(t, doc.Table.Columns[2].HeaderValue)
	require.NotNil(t, doc.Table.Columns[0].HeaderValue)
	assert.Equal(t, "שם המוצר", *doc.Table.Columns[0].HeaderValue)
	assert.Equal(t, "מחיר", doc.Table.Columns[1].CanonicalLabel)

	// dòng rỗng bị bỏ, số dòng sheet được giữ
	require.Len(t, doc.Table.Rows, 2)
	assert.Equal(t, 0, doc.Table.Rows[0].Index)
	assert.Equal(t, 2, doc.Table.Rows[0].SheetRow)
	assert.Equal(t, "10.5", doc.Table.Rows[0].Cell(1))
	assert.Equal(t, 1, doc.Table.Rows[1].Index)
	assert.Equal(t, 4, doc.Table.Rows[1].SheetRow)
	assert.Equal(t, "ספק ב", doc.Table.Rows[1].Cell(3))
}

func TestRead_XLSXExplicitSheetWithoutHeader(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"A": {{"x", "1"}},
		"B": {{"y", "2"}, {"z", "3"}},
	}, "A", "B")

	doc, err := newTestReader().Read(context.Background(), data, model.ReadOptions{SheetIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, doc.SelectedSheet)
	require.Len(t, doc.Table.Rows, 1)
	assert.Nil(t, doc.Table.Columns[0].HeaderValue)

	_, err = newTestReader().Read(context.Background(), data, model.ReadOptions{SheetIndex: 5})
	var pErr *model.ParseError
	assert.True(t, errors.As(err, &pErr))
}

func TestRead_EmptySheetIsNotAnError(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{"Empty": {}}, "Empty")

	doc, err := newTestReader().Read(context.Background(), data, model.ReadOptions{SheetIndex: model.AutoSheet, HasHeader: true})
	require.NoError(t, err)
	assert.Empty(t, doc.Table.Rows)
	assert.Empty(t, doc.Table.Columns)
	assert.NotEmpty(t, doc.Warnings)
}

func TestRead_CSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFname;price;supplier\n\"Cola; 1.5L\";7,90;Acme\n\n;;\nFanta;6;Acme\n")

	doc, err := newTestReader().Read(context.Background(), data, model.ReadOptions{SourceType: model.SourceExcel, HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, model.KindCSV, doc.Kind)
	require.Len(t, doc.Table.Columns, 3)
	assert.Equal(t, "name", *doc.Table.Columns[0].HeaderValue)
	require.Len(t, doc.Table.Rows, 2)
	assert.Equal(t, "Cola; 1.5L", doc.Table.Rows[0].Cell(0))
	assert.Equal(t, "7,90", doc.Table.Rows[0].Cell(1))
	assert.Equal(t, 5, doc.Table.Rows[1].SheetRow)
}

func TestRead_CSVWindows1255(t *testing.T) {
	encoded, err := charmap.Windows1255.NewEncoder().String("שם,מחיר\nקולה,10\n")
	require.NoError(t, err)

	doc, err := newTestReader().Read(context.Background(), []byte(encoded), model.ReadOptions{HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, "שם", *doc.Table.Columns[0].HeaderValue)
	assert.Equal(t, "קולה", doc.Table.Rows[0].Cell(0))
}

func TestRead_Errors(t *testing.T) {
	r := newTestReader()
	var pErr *model.ParseError

	_, err := r.Read(context.Background(), nil, model.ReadOptions{})
	require.True(t, errors.As(err, &pErr))
	assert.ErrorIs(t, err, model.ErrEmptyFile)

	_, err = r.Read(context.Background(), []byte("a,b\n1,2"), model.ReadOptions{SourceType: model.SourcePDF})
	require.True(t, errors.As(err, &pErr))
	assert.ErrorIs(t, err, model.ErrUnsupportedFile)

	_, err = r.Read(context.Background(), []byte{'P', 'K', 3, 4, 'g', 'a', 'r', 'b'}, model.ReadOptions{})
	assert.True(t, errors.As(err, &pErr))
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c\n")))
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c\n1,5;2;3")))
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb\n")))
	assert.Equal(t, '|', sniffDelimiter([]byte("\"x,y\"|b|c")))
	assert.Equal(t, ',', sniffDelimiter([]byte("single")))
}

func TestPaginate(t *testing.T) {
	rows := make([]model.Row, 120)
	for i := range rows {
		rows[i] = model.Row{Index: i}
	}

	p := Paginate(rows, 2, 50)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 50, p.Offset)
	assert.Len(t, p.Rows, 50)
	assert.Equal(t, 50, p.Rows[0].Index)

	p = Paginate(rows, 99, 50)
	assert.Equal(t, 3, p.Page)
	assert.Len(t, p.Rows, 20)

	p = Paginate(nil, 0, 50)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 0, p.TotalRows)
	assert.Empty(t, p.Rows)
}

type countingReader struct {
	calls int
	next  Reader
}

func (c *countingReader) Read(ctx context.Context, data []byte, opts model.ReadOptions) (*model.Document, error) {
	c.calls++
	return c.next.Read(ctx, data, opts)
}

func TestCachedReader(t *testing.T) {
	inner := &countingReader{next: newTestReader()}
	r := NewCachedReader(inner, cache.NewMemoryCache(), 0)
	data := []byte("name,price\ncola,1\n")
	opts := model.ReadOptions{HasHeader: true}

	first, err := r.Read(context.Background(), data, opts)
	require.NoError(t, err)
	second, err := r.Read(context.Background(), data, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Table.Rows, second.Table.Rows)

	_, err = r.Read(context.Background(), data, model.ReadOptions{HasHeader: false})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
