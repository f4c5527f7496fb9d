// Package pattern compiles user-supplied term specifications into immutable,
// shareable match patterns over word-forms and part-of-speech tags.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/tadoru/internal/models"
)

// Kind says which token field a term is matched against.
type Kind int

const (
	// LiteralWord matches the token's word-form, case-insensitively.
	LiteralWord Kind = iota
	// TagGlob matches the token's part-of-speech tag; the glob must cover
	// the entire tag, not a substring.
	TagGlob
)

// Term kind names as they appear in the specification format.
const (
	MatchWord = "word"
	MatchTag  = "tag"
)

// TermSpec is one position of a pattern specification. Match must name the
// term kind explicitly; it is never inferred from the expression's surface form.
type TermSpec struct {
	Match string `yaml:"match" json:"match"` // "word" or "tag"
	Expr  string `yaml:"expr" json:"expr"`
}

// Spec is a named, ordered list of term specifications.
type Spec struct {
	Label string     `yaml:"label" json:"label"`
	Terms []TermSpec `yaml:"terms" json:"terms"`
}

// SpecError reports an invalid pattern specification. It is fatal: there is
// nothing to salvage from a bad configuration, so compilation happens before
// any scanning starts.
type SpecError struct {
	Label  string
	Pos    int // 1-based term position, 0 when the whole spec is at fault
	Reason string
}

func (e *SpecError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("pattern %q term %d: %s", e.Label, e.Pos, e.Reason)
	}
	return fmt.Sprintf("pattern %q: %s", e.Label, e.Reason)
}

// Term is one compiled pattern position. Immutable after compilation.
type Term struct {
	Kind Kind
	Expr string
	key  string
	lit  string         // lowercased literal, set for wildcard-free word terms
	re   *regexp.Regexp // anchored matcher, set otherwise
}

// Key is the term's canonical form, identical for identical terms across
// patterns. Used by the matching engine to share per-token evaluations.
func (t *Term) Key() string { return t.key }

// Matches tests the term against a single token.
func (t *Term) Matches(tok *models.Token) bool {
	switch t.Kind {
	case LiteralWord:
		w := strings.ToLower(tok.Word)
		if t.re != nil {
			return t.re.MatchString(w)
		}
		return w == t.lit
	default:
		return t.re.MatchString(strings.ToLower(tok.Tag))
	}
}

// Pattern is an ordered, non-empty sequence of compiled terms plus its
// canonical output label. Shared read-only across all scanning workers.
type Pattern struct {
	Label string
	Terms []*Term
}

// Len returns the pattern's term count; every reported match spans exactly
// this many tokens.
func (p *Pattern) Len() int { return len(p.Terms) }

func compileTerm(label string, pos int, ts TermSpec) (*Term, error) {
	var kind Kind
	switch ts.Match {
	case MatchWord:
		kind = LiteralWord
	case MatchTag:
		kind = TagGlob
	default:
		return nil, &SpecError{Label: label, Pos: pos, Reason: fmt.Sprintf("unknown match kind %q (want %q or %q)", ts.Match, MatchWord, MatchTag)}
	}
	expr := strings.TrimSpace(ts.Expr)
	if expr == "" {
		return nil, &SpecError{Label: label, Pos: pos, Reason: "empty expression"}
	}
	t := &Term{
		Kind: kind,
		Expr: expr,
		key:  ts.Match + ":" + strings.ToLower(expr),
	}
	if kind == LiteralWord && !hasWildcard(expr) {
		t.lit = strings.ToLower(expr)
		return t, nil
	}
	re, err := compileGlob(expr)
	if err != nil {
		return nil, &SpecError{Label: label, Pos: pos, Reason: err.Error()}
	}
	t.re = re
	return t, nil
}

// Compile turns a specification into an immutable Pattern. When the spec has
// no label, one is derived from the literal form of its terms.
func Compile(spec Spec) (*Pattern, error) {
	label := spec.Label
	if label == "" {
		label = deriveLabel(spec.Terms)
	}
	if len(spec.Terms) == 0 {
		return nil, &SpecError{Label: label, Reason: "no terms"}
	}
	p := &Pattern{Label: label, Terms: make([]*Term, 0, len(spec.Terms))}
	for i, ts := range spec.Terms {
		t, err := compileTerm(label, i+1, ts)
		if err != nil {
			return nil, err
		}
		p.Terms = append(p.Terms, t)
	}
	return p, nil
}

// CompileSet compiles all specs, rejecting duplicate labels. Any error aborts
// the whole set.
func CompileSet(specs []Spec) ([]*Pattern, error) {
	patterns := make([]*Pattern, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		p, err := Compile(spec)
		if err != nil {
			return nil, err
		}
		if seen[p.Label] {
			return nil, &SpecError{Label: p.Label, Reason: "duplicate label"}
		}
		seen[p.Label] = true
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// deriveLabel builds a filesystem-safe label from the term expressions.
func deriveLabel(terms []TermSpec) string {
	parts := make([]string, 0, len(terms))
	for _, ts := range terms {
		var b strings.Builder
		for _, r := range strings.ToLower(ts.Expr) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	if len(parts) == 0 {
		return "pattern"
	}
	return strings.Join(parts, "-")
}
