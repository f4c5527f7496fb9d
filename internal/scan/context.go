package scan

import (
	"github.com/hyperjump/tadoru/internal/corpus"
	"github.com/hyperjump/tadoru/internal/models"
)

// DefaultContextWidth is the default number of context tokens kept on each
// side of a match.
const DefaultContextWidth = 30

// Extractor pulls bounded context windows around match spans.
type Extractor struct {
	Width int
}

// Extract returns up to Width tokens before and after the match span, clipped
// at the document's edges. Left context is ordered oldest-to-newest. The match
// belongs to doc; positions outside the document are never touched, so context
// never leaks across file or document boundaries.
func (e Extractor) Extract(doc *corpus.Document, m *models.Match) models.ContextRecord {
	w := e.Width
	if w <= 0 {
		w = DefaultContextWidth
	}
	base := doc.Tokens[0].Pos // document tokens are contiguous within the file
	s := m.Start - base
	t := m.End - base + 1

	left := s - w
	if left < 0 {
		left = 0
	}
	right := t + w
	if right > len(doc.Tokens) {
		right = len(doc.Tokens)
	}
	return models.ContextRecord{
		Left:  doc.Tokens[left:s],
		Match: m.Tokens,
		Right: doc.Tokens[t:right],
	}
}
