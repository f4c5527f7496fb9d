package scan

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/tadoru/internal/aggregate"
	"github.com/hyperjump/tadoru/internal/corpus"
	"github.com/hyperjump/tadoru/internal/models"
	"github.com/hyperjump/tadoru/internal/pattern"
)

// Config holds scan-run settings.
type Config struct {
	ContextWidth     int
	Workers          int // 0 means runtime.NumCPU()
	SuppressOverlaps bool
}

// Runner scans a set of corpus files concurrently. Files are independent, the
// compiled pattern set is read-only, and each worker owns its own window and
// row state, so no locks are needed beyond the job queue.
type Runner struct {
	engine    *Engine
	parser    *corpus.Parser
	extractor Extractor
	workers   int
	logger    *zap.Logger // optional
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a logger for per-file progress and failures.
func WithRunnerLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner for the given compiled pattern set.
func NewRunner(patterns []*pattern.Pattern, cfg Config, opts ...RunnerOption) *Runner {
	engineOpts := []EngineOption{}
	if cfg.SuppressOverlaps {
		engineOpts = append(engineOpts, WithOverlapSuppression())
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r := &Runner{
		engine:    NewEngine(patterns, engineOpts...),
		extractor: Extractor{Width: cfg.ContextWidth},
		workers:   workers,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.parser = corpus.NewParser(parserOpts(r.logger)...)
	return r
}

func parserOpts(l *zap.Logger) []corpus.ParserOption {
	if l == nil {
		return nil
	}
	return []corpus.ParserOption{corpus.WithLogger(l)}
}

type fileResult struct {
	rows    []*models.Row
	skipped int
	err     error
}

// Run scans all files and returns grouped rows plus the run summary. Files are
// processed by a worker pool but merged in loader order, so reruns over an
// unchanged corpus yield identical output. A failure in one file drops only
// that file's contribution and is recorded in the summary; the rest of the
// run proceeds.
func (r *Runner) Run(ctx context.Context, files []models.CorpusFile) (*aggregate.Groups, *models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Files:     len(files),
	}

	results := make([]fileResult, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.scanFile(&files[i])
			}
		}()
	}
	for i := range files {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return nil, nil, err
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	groups := aggregate.NewGroups()
	for i, res := range results {
		if res.err != nil {
			summary.FailedFiles = append(summary.FailedFiles, models.FileFailure{
				File:   files[i].Name,
				Reason: res.err.Error(),
			})
			if r.logger != nil {
				r.logger.Warn("corpus file failed",
					zap.String("file", files[i].Path),
					zap.Error(res.err))
			}
			continue
		}
		summary.SkippedLines += int64(res.skipped)
		summary.TotalMatches += int64(len(res.rows))
		groups.Append(res.rows)
	}
	summary.Groups = groups.Counts()
	summary.FinishedAt = time.Now()
	return groups, summary, nil
}

// scanFile parses one file and scans its documents in order.
func (r *Runner) scanFile(file *models.CorpusFile) fileResult {
	docs, stats, err := r.parser.ParseFile(file.Path)
	if err != nil {
		return fileResult{err: err}
	}
	var rows []*models.Row
	for d := range docs {
		doc := &docs[d]
		for _, m := range r.engine.ScanDocument(file, doc) {
			rec := r.extractor.Extract(doc, m)
			rows = append(rows, rowFromMatch(file, m, rec))
		}
	}
	if r.logger != nil {
		r.logger.Debug("corpus file scanned",
			zap.String("file", file.Path),
			zap.Int("tokens", stats.Tokens),
			zap.Int("documents", stats.Documents),
			zap.Int("skipped_lines", stats.Skipped),
			zap.Int("rows", len(rows)))
	}
	return fileResult{rows: rows, skipped: stats.Skipped}
}

// rowFromMatch flattens a match and its context into a concordance row.
func rowFromMatch(file *models.CorpusFile, m *models.Match, rec models.ContextRecord) *models.Row {
	return &models.Row{
		Label:      m.Label,
		Bucket:     m.Bucket,
		File:       m.File,
		Genre:      file.Genre,
		DocID:      m.DocID,
		Position:   m.Start,
		Before:     joinWords(rec.Left),
		MatchText:  joinWords(rec.Match),
		MatchTags:  joinTags(rec.Match),
		After:      joinWords(rec.Right),
		BeforeTags: joinLemmaTags(rec.Left),
		AfterTags:  joinLemmaTags(rec.Right),
	}
}

func joinWords(tokens []models.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Word
	}
	return strings.Join(parts, " ")
}

func joinTags(tokens []models.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Tag
	}
	return strings.Join(parts, " ")
}

func joinLemmaTags(tokens []models.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Lemma + "_" + t.Tag
	}
	return strings.Join(parts, " ")
}
