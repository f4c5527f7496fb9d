package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r, "limit", 50)
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "run not found")
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	groups, err := s.store.ListGroups(r.Context(), id)
	if err != nil {
		s.logger.Error("list groups failed", zap.String("run", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *Server) handleQueryRows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	label := r.URL.Query().Get("label")
	bucket := r.URL.Query().Get("bucket")
	if label == "" || bucket == "" {
		s.respondError(w, http.StatusBadRequest, "label and bucket query parameters are required")
		return
	}
	limit := intQueryParam(r, "limit", 100)
	offset := intQueryParam(r, "offset", 0)
	rows, err := s.store.QueryRows(r.Context(), id, label, bucket, limit, offset)
	if err != nil {
		s.logger.Error("query rows failed", zap.String("run", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"label":  label,
		"bucket": bucket,
		"rows":   rows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func intQueryParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
