package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/tadoru/internal/models"
)

// CSVSink writes each group to <dir>/<label>/<label>-<bucket>.csv.
type CSVSink struct {
	dir string
}

// NewCSVSink creates a CSV sink rooted at dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

// WriteGroup writes one group's rows to its CSV file, header first.
func (s *CSVSink) WriteGroup(ctx context.Context, key models.GroupKey, rows []*models.Row) error {
	labelDir := filepath.Join(s.dir, key.Label)
	if err := os.MkdirAll(labelDir, 0755); err != nil {
		return fmt.Errorf("create result directory: %w", err)
	}
	path := filepath.Join(labelDir, fmt.Sprintf("%s-%s.csv", key.Label, key.Bucket))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Write(rowValues(r)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// Close is a no-op; each group file is flushed and closed as it is written.
func (s *CSVSink) Close() error { return nil }
