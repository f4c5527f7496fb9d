package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/tadoru/internal/models"
)

// RunSink adapts a Store to the sink interface for one run: each group's rows
// are persisted under the run's ID.
type RunSink struct {
	store *Store
	runID string
}

// NewRunSink creates a sink that stores rows for runID.
func NewRunSink(store *Store, runID string) *RunSink {
	return &RunSink{store: store, runID: runID}
}

// WriteGroup persists one group's rows.
func (s *RunSink) WriteGroup(ctx context.Context, key models.GroupKey, rows []*models.Row) error {
	if err := s.store.SaveRows(ctx, s.runID, rows); err != nil {
		return fmt.Errorf("store group %s/%s: %w", key.Label, key.Bucket, err)
	}
	return nil
}

// Close is a no-op; the store itself is closed by its owner.
func (s *RunSink) Close() error { return nil }
