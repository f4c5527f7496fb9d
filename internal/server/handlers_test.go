package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/tadoru/internal/config"
	"github.com/hyperjump/tadoru/internal/models"
	"github.com/hyperjump/tadoru/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	cfg := &config.ServerConfig{Host: "localhost", Port: 0}
	return NewServer(store, cfg, zap.NewNop()), store
}

func seedRun(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()
	summary := &models.RunSummary{
		RunID:        "run-1",
		StartedAt:    time.Now().Add(-time.Minute),
		FinishedAt:   time.Now(),
		Files:        1,
		TotalMatches: 2,
	}
	if err := store.SaveRun(ctx, summary); err != nil {
		t.Fatal(err)
	}
	rows := []*models.Row{
		{Label: "gonna", Bucket: "1850", File: "1850_fic.txt", Position: 4, MatchText: "gon na go", MatchTags: "NN NN VBI"},
		{Label: "gonna", Bucket: "1850", File: "1850_news.txt", Position: 8, MatchText: "gon na run", MatchTags: "NN NN VBI"},
	}
	if err := store.SaveRows(ctx, "run-1", rows); err != nil {
		t.Fatal(err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleListRuns(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Runs []models.RunSummary `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Runs) != 1 || out.Runs[0].RunID != "run-1" {
		t.Errorf("runs = %+v", out.Runs)
	}
}

func TestHandleGetRun(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var run models.RunSummary
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.TotalMatches != 2 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Groups) != 1 || run.Groups[0].Rows != 2 {
		t.Errorf("groups = %+v", run.Groups)
	}
}

func TestHandleGetRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleQueryRows(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/rows?label=gonna&bucket=1850&limit=1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Rows []models.Row `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Rows) != 1 || out.Rows[0].File != "1850_fic.txt" {
		t.Errorf("rows = %+v", out.Rows)
	}
}

func TestHandleQueryRowsMissingParams(t *testing.T) {
	srv, store := newTestServer(t)
	seedRun(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/rows", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
