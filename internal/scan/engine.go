// Package scan runs compiled patterns over corpus token streams: a sliding
// window per pattern, bounded context extraction, and a concurrent per-file
// runner.
package scan

import (
	"github.com/hyperjump/tadoru/internal/corpus"
	"github.com/hyperjump/tadoru/internal/models"
	"github.com/hyperjump/tadoru/internal/pattern"
)

// Engine scans documents against a compiled pattern set. The pattern set is
// immutable after construction, so one Engine is safely shared by all workers.
type Engine struct {
	patterns         []*pattern.Pattern
	terms            []*pattern.Term // distinct terms across all patterns
	suppressOverlaps bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithOverlapSuppression makes the engine skip matches of a pattern that
// overlap an earlier match of the same pattern. Off by default; all
// overlapping matches are reported.
func WithOverlapSuppression() EngineOption {
	return func(e *Engine) { e.suppressOverlaps = true }
}

// NewEngine creates an engine for the given compiled patterns. Terms that are
// identical across patterns are evaluated once per token.
func NewEngine(patterns []*pattern.Pattern, opts ...EngineOption) *Engine {
	e := &Engine{patterns: patterns}
	seen := make(map[string]bool)
	for _, p := range patterns {
		for _, t := range p.Terms {
			if !seen[t.Key()] {
				seen[t.Key()] = true
				e.terms = append(e.terms, t)
			}
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScanDocument slides every pattern's window across the document's tokens and
// returns all matches in start-position order per pattern. The window is
// bounded by the document: a pattern of length k needs k tokens inside this
// document, so nothing ever matches across a boundary, and a window that
// cannot fill (pattern longer than the remaining tokens) reports nothing.
func (e *Engine) ScanDocument(file *models.CorpusFile, doc *corpus.Document) []*models.Match {
	n := len(doc.Tokens)
	if n == 0 {
		return nil
	}

	// Shared per-token classification: one evaluation per distinct term per
	// token, reused by every pattern position holding that term.
	class := make(map[string][]bool, len(e.terms))
	for _, t := range e.terms {
		hits := make([]bool, n)
		for i := range doc.Tokens {
			hits[i] = t.Matches(&doc.Tokens[i])
		}
		class[t.Key()] = hits
	}

	var matches []*models.Match
	for _, p := range e.patterns {
		k := p.Len()
		if k > n {
			continue
		}
		nextStart := 0
		for s := 0; s+k <= n; s++ {
			if e.suppressOverlaps && s < nextStart {
				continue
			}
			ok := true
			for j, t := range p.Terms {
				if !class[t.Key()][s+j] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			span := make([]models.Token, k)
			copy(span, doc.Tokens[s:s+k])
			matches = append(matches, &models.Match{
				Label:  p.Label,
				Bucket: file.Bucket,
				File:   file.Name,
				DocID:  doc.ID,
				Start:  doc.Tokens[s].Pos,
				End:    doc.Tokens[s+k-1].Pos,
				Tokens: span,
			})
			nextStart = s + k
		}
	}
	return matches
}
