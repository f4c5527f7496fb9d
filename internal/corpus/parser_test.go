package corpus

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	input := strings.Join([]string{
		"1\tHe\the\tPRP",
		"2\tis\tbe\tVBZ",
		"3\tgoing\tgo\tVBG",
	}, "\n")
	p := NewParser()
	docs, stats, err := p.Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if stats.Tokens != 3 || stats.Skipped != 0 || stats.Documents != 1 {
		t.Errorf("stats = %+v", stats)
	}
	toks := docs[0].Tokens
	if toks[0].Word != "He" || toks[0].Lemma != "he" || toks[0].Tag != "PRP" || toks[0].ID != "1" {
		t.Errorf("token 0 = %+v", toks[0])
	}
	// Positions are 1-based and contiguous.
	for i, tok := range toks {
		if tok.Pos != i+1 {
			t.Errorf("token %d Pos = %d, want %d", i, tok.Pos, i+1)
		}
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"1\tgood\tgood\tJJ",
		"not a token line",
		"2\ttoo\tmany\tfields\textra",
		"3\tfine\tfine\tNN",
	}, "\n")
	p := NewParser()
	docs, stats, err := p.Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}
	if stats.Tokens != 2 {
		t.Errorf("Tokens = %d, want 2", stats.Tokens)
	}
	// Positions stay contiguous across skipped lines.
	toks := docs[0].Tokens
	if toks[0].Pos != 1 || toks[1].Pos != 2 {
		t.Errorf("positions = %d, %d", toks[0].Pos, toks[1].Pos)
	}
}

func TestParseDocumentBoundaries(t *testing.T) {
	input := strings.Join([]string{
		"##100 An Old Story",
		"1\tonce\tonce\tRB",
		"2\tupon\tupon\tIN",
		"",
		"##200",
		"3\tnew\tnew\tJJ",
		"4\ttale\ttale\tNN",
	}, "\n")
	p := NewParser()
	docs, stats, err := p.Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "100" || docs[1].ID != "200" {
		t.Errorf("doc IDs = %q, %q", docs[0].ID, docs[1].ID)
	}
	if stats.Documents != 2 {
		t.Errorf("Documents = %d", stats.Documents)
	}
	// File positions keep counting across the boundary.
	if docs[1].Tokens[0].Pos != 3 {
		t.Errorf("first token of second doc Pos = %d, want 3", docs[1].Tokens[0].Pos)
	}
	if docs[1].Tokens[0].DocID != "200" {
		t.Errorf("DocID = %q", docs[1].Tokens[0].DocID)
	}
}

func TestParseBlankLinesOnlySplitOnce(t *testing.T) {
	input := "1\ta\ta\tAT\n\n\n\n2\tb\tb\tNN\n"
	p := NewParser()
	docs, _, err := p.Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %d", len(docs))
	}
}

func TestParseStripsControlCharacters(t *testing.T) {
	input := "1\tgo\x01ing\tgo\tVBG"
	p := NewParser()
	docs, _, err := p.Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if docs[0].Tokens[0].Word != "going" {
		t.Errorf("Word = %q, want going", docs[0].Tokens[0].Word)
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser()
	docs, stats, err := p.Parse(strings.NewReader(""), "test")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if docs != nil {
		t.Errorf("expected no documents, got %d", len(docs))
	}
	if stats.Tokens != 0 {
		t.Errorf("Tokens = %d", stats.Tokens)
	}
}
