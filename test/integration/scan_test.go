// Package integration provides end-to-end tests (requires real files and storage).
package integration

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/tadoru/internal/corpus"
	"github.com/hyperjump/tadoru/internal/models"
	"github.com/hyperjump/tadoru/internal/pattern"
	"github.com/hyperjump/tadoru/internal/scan"
	"github.com/hyperjump/tadoru/internal/sink"
	"github.com/hyperjump/tadoru/internal/storage"
)

const ficText = "##1001\n" +
	"1\tHe\the\tPRP\n" +
	"2\tis\tbe\tVBZ\n" +
	"3\tgoing\tgo\tVBG\n" +
	"4\tto\tto\tTO\n" +
	"5\tvisit\tvisit\tVBI\n" +
	"6\tLondon\tlondon\tNNP\n" +
	"7\t.\t.\t.\n"

func TestIntegration_ScanToCSVAndStore(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "corpus")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "1850_fic.txt"), []byte(ficText), 0644); err != nil {
		t.Fatal(err)
	}

	patterns, err := pattern.CompileSet([]pattern.Spec{{
		Label: "be-going-to-verb",
		Terms: []pattern.TermSpec{
			{Match: pattern.MatchTag, Expr: "VB*"},
			{Match: pattern.MatchWord, Expr: "going"},
			{Match: pattern.MatchWord, Expr: "to"},
			{Match: pattern.MatchTag, Expr: "V?I*"},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}

	files, err := corpus.Discover(root)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	runner := scan.NewRunner(patterns, scan.Config{ContextWidth: 5, Workers: 2})
	groups, summary, err := runner.Run(ctx, files)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalMatches != 1 {
		t.Fatalf("total matches = %d, want 1", summary.TotalMatches)
	}

	// CSV output.
	resultsDir := filepath.Join(dir, "results")
	csvSink := sink.NewCSVSink(resultsDir)
	if err := groups.Each(func(key models.GroupKey, rows []*models.Row) error {
		return csvSink.WriteGroup(ctx, key, rows)
	}); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(resultsDir, "be-going-to-verb", "be-going-to-verb-1850.csv")
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("expected result file: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	if records[1][5] != "is going to visit" {
		t.Errorf("match text = %q", records[1][5])
	}

	// SQLite persistence and read-back.
	store, err := storage.Open(filepath.Join(dir, "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.SaveRun(ctx, summary); err != nil {
		t.Fatal(err)
	}
	runSink := storage.NewRunSink(store, summary.RunID)
	if err := groups.Each(func(key models.GroupKey, rows []*models.Row) error {
		return runSink.WriteGroup(ctx, key, rows)
	}); err != nil {
		t.Fatal(err)
	}
	stored, err := store.QueryRows(ctx, summary.RunID, "be-going-to-verb", "1850", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Position != 2 {
		t.Errorf("stored rows = %+v", stored)
	}
}
