package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/tadoru/internal/models"
)

// tokenFields is the fixed field count of a corpus line:
// word id, word-form, lemma, part-of-speech tag.
const tokenFields = 4

// Document is one contiguous token sequence within a corpus file. Patterns and
// context windows never cross from one Document into the next.
type Document struct {
	ID     string
	Tokens []models.Token
}

// ParseStats counts what the parser saw in one file.
type ParseStats struct {
	Lines     int
	Tokens    int
	Documents int
	Skipped   int // malformed lines dropped, never fatal
}

// Parser converts raw corpus lines into per-document token sequences.
type Parser struct {
	logger *zap.Logger // optional; when set, logs skipped lines
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets a logger for skipped-line diagnostics.
func WithLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

// NewParser creates a parser. Options (e.g. WithLogger) can be passed for
// diagnostics.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads the file at path and returns its documents.
func (p *Parser) ParseFile(path string) ([]Document, ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse reads tabular token lines from r. Document boundaries are marked by
// "##<id>" header lines or blank lines; both close the current document. A
// line that does not split into exactly four tab-separated fields is skipped
// and counted, since corpus text is known to contain irregular rows. Token
// positions are assigned 1-based and contiguous across the whole file.
func (p *Parser) Parse(r io.Reader, name string) ([]Document, ParseStats, error) {
	var (
		docs    []Document
		current Document
		stats   ParseStats
		pos     int
	)
	flush := func() {
		if len(current.Tokens) > 0 {
			docs = append(docs, current)
			stats.Documents++
		}
		current = Document{}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		stats.Lines++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "##") {
			flush()
			if fields := strings.Fields(line[2:]); len(fields) > 0 {
				current.ID = fields[0]
			}
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != tokenFields {
			stats.Skipped++
			if p.logger != nil {
				p.logger.Debug("skipping malformed line",
					zap.String("file", name),
					zap.Int("line", stats.Lines),
					zap.Int("fields", len(fields)))
			}
			continue
		}
		pos++
		current.Tokens = append(current.Tokens, models.Token{
			ID:    fields[0],
			Word:  cleanWord(fields[1]),
			Lemma: fields[2],
			Tag:   fields[3],
			Pos:   pos,
			DocID: current.ID,
		})
		stats.Tokens++
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", name, err)
	}
	flush()
	return docs, stats, nil
}

// cleanWord strips control characters that leak into older corpus exports.
func cleanWord(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
