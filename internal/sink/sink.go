// Package sink serializes result groups to durable output formats.
package sink

import (
	"context"
	"strconv"

	"github.com/hyperjump/tadoru/internal/models"
)

// Sink consumes one (label, bucket) row group at a time. Rows arrive in scan
// order and must be written in that order. A write failure is fatal for the
// group and is surfaced to the caller.
type Sink interface {
	WriteGroup(ctx context.Context, key models.GroupKey, rows []*models.Row) error
	Close() error
}

// header is the column layout shared by the file-based sinks.
var header = []string{
	"file", "genre", "doc_id", "position",
	"before", "match", "match_tags", "after",
	"before_tags", "after_tags",
}

func rowValues(r *models.Row) []string {
	return []string{
		r.File, r.Genre, r.DocID, strconv.Itoa(r.Position),
		r.Before, r.MatchText, r.MatchTags, r.After,
		r.BeforeTags, r.AfterTags,
	}
}
