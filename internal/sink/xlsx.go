package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/tadoru/internal/models"
)

// XLSXSink writes one workbook per pattern label at <dir>/<label>.xlsx, with
// one sheet per time bucket. Workbooks are saved on Close.
type XLSXSink struct {
	dir   string
	books map[string]*excelize.File
}

// NewXLSXSink creates an XLSX sink rooted at dir.
func NewXLSXSink(dir string) *XLSXSink {
	return &XLSXSink{dir: dir, books: make(map[string]*excelize.File)}
}

// WriteGroup writes one group's rows onto the bucket sheet of the label's workbook.
func (s *XLSXSink) WriteGroup(ctx context.Context, key models.GroupKey, rows []*models.Row) error {
	book, fresh := s.books[key.Label], false
	if book == nil {
		book = excelize.NewFile()
		s.books[key.Label] = book
		fresh = true
	}
	if fresh {
		// Reuse the default sheet for the first bucket.
		if err := book.SetSheetName(book.GetSheetName(0), key.Bucket); err != nil {
			return fmt.Errorf("sheet %s/%s: %w", key.Label, key.Bucket, err)
		}
	} else {
		if _, err := book.NewSheet(key.Bucket); err != nil {
			return fmt.Errorf("sheet %s/%s: %w", key.Label, key.Bucket, err)
		}
	}

	if err := setRow(book, key.Bucket, 1, header); err != nil {
		return fmt.Errorf("write header %s/%s: %w", key.Label, key.Bucket, err)
	}
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := setRow(book, key.Bucket, i+2, rowValues(r)); err != nil {
			return fmt.Errorf("write row %d of %s/%s: %w", i+1, key.Label, key.Bucket, err)
		}
	}
	return nil
}

func setRow(book *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return book.SetSheetRow(sheet, cell, &cells)
}

// Close saves every workbook and releases it.
func (s *XLSXSink) Close() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create result directory: %w", err)
	}
	var firstErr error
	for label, book := range s.books {
		path := filepath.Join(s.dir, label+".xlsx")
		if err := book.SaveAs(path); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("save %s: %w", path, err)
		}
		if err := book.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", path, err)
		}
	}
	s.books = make(map[string]*excelize.File)
	return firstErr
}
