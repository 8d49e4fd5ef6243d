package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
	"github.com/ogulcanaydogan/disk-guardian/pkg/monitor"
	"github.com/ogulcanaydogan/disk-guardian/pkg/storage"
)

const defaultHistoryLimit = 100

// StatusSource exposes the latest completed cycle per path.
type StatusSource interface {
	Last() map[string]monitor.CycleResult
}

// Server provides health, status, history and metrics endpoints.
type Server struct {
	status  StatusSource
	journal storage.Journal
	metrics http.Handler
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates an API server. journal and metrics may be nil, in which
// case their endpoints answer 404.
func NewServer(status StatusSource, journal storage.Journal, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		status:  status,
		journal: journal,
		metrics: metrics,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	if s.journal != nil {
		s.mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type pathStatus struct {
	Path string `json:"path"`
	monitor.CycleResult
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	last := s.status.Last()

	paths := make([]string, 0, len(last))
	for p := range last {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	out := make([]pathStatus, 0, len(paths))
	for _, p := range paths {
		out = append(out, pathStatus{Path: p, CycleResult: last[p]})
	}
	writeJSON(w, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	filter := model.JournalFilter{
		Path:   q.Get("path"),
		Status: model.OutcomeStatus(q.Get("status")),
		Limit:  defaultHistoryLimit,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}
	if v := q.Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "since must be a positive duration", http.StatusBadRequest)
			return
		}
		filter.StartTime = time.Now().UTC().Add(-d)
	}

	entries, err := s.journal.List(ctx, filter)
	if err != nil {
		s.logger.Error("list journal", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	writeJSON(w, entries)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
