// Package aggregate groups concordance rows by (pattern label, time bucket).
package aggregate

import (
	"sort"

	"github.com/hyperjump/tadoru/internal/models"
)

// Groups holds rows grouped by (label, bucket). Within a group, rows stay in
// the order they were appended — corpus scan order, file then token position.
// That order is a guaranteed contract for sinks, not an implementation detail.
type Groups struct {
	rows map[models.GroupKey][]*models.Row
}

// NewGroups creates an empty group set.
func NewGroups() *Groups {
	return &Groups{rows: make(map[models.GroupKey][]*models.Row)}
}

// Append adds rows, each to its own group, preserving input order.
func (g *Groups) Append(rows []*models.Row) {
	for _, r := range rows {
		key := r.Key()
		g.rows[key] = append(g.rows[key], r)
	}
}

// Keys returns all group keys sorted by label then bucket.
func (g *Groups) Keys() []models.GroupKey {
	keys := make([]models.GroupKey, 0, len(g.rows))
	for k := range g.rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Label != keys[j].Label {
			return keys[i].Label < keys[j].Label
		}
		return keys[i].Bucket < keys[j].Bucket
	})
	return keys
}

// Rows returns the rows of one group in scan order.
func (g *Groups) Rows(key models.GroupKey) []*models.Row {
	return g.rows[key]
}

// Counts returns per-group row counts, ordered like Keys.
func (g *Groups) Counts() []models.GroupCount {
	keys := g.Keys()
	counts := make([]models.GroupCount, 0, len(keys))
	for _, k := range keys {
		counts = append(counts, models.GroupCount{
			Label:  k.Label,
			Bucket: k.Bucket,
			Rows:   int64(len(g.rows[k])),
		})
	}
	return counts
}

// Each calls fn once per group in Keys order, stopping on the first error.
func (g *Groups) Each(fn func(key models.GroupKey, rows []*models.Row) error) error {
	for _, k := range g.Keys() {
		if err := fn(k, g.rows[k]); err != nil {
			return err
		}
	}
	return nil
}
