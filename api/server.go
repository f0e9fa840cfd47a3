package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"rentradar/config"
	"rentradar/models"
)

// Searcher is the search entry point the API fronts.
type Searcher interface {
	Search(ctx context.Context, criteria models.SearchCriteria, page, limit int) *models.SearchResult
}

// RunReader exposes the operational history the API serves alongside
// search itself.
type RunReader interface {
	GetSourceStats(ctx context.Context) ([]models.SourceStats, error)
	GetRecentRuns(ctx context.Context, limit int) ([]models.SearchRun, error)
}

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	search     Searcher
	runs       RunReader // nil hides the runs endpoints
}

type searchRequest struct {
	Criteria models.SearchCriteria `json:"criteria"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewServer(cfg *config.Config, search Searcher, runs RunReader) *Server {
	s := &Server{cfg: cfg, search: search, runs: runs}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute)) // searches scrape live sites
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/sources", s.handleSources)
		r.Get("/runs", s.handleRuns)
	})

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	log.Printf("[api] listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleSearch is a thin pass-through: the search service owns the
// never-fails contract, so the handler only translates JSON.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid request body"})
		return
	}

	result := s.search.Search(r.Context(), req.Criteria, req.Page, req.Limit)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: result})
}

type sourceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	Priority int    `json:"priority"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := s.cfg.ActiveSources()
	out := make([]sourceInfo, 0, len(sources))
	for _, src := range sources {
		out = append(out, sourceInfo{
			ID:       src.ID,
			Name:     src.Name,
			BaseURL:  src.BaseURL,
			Priority: src.Priority,
		})
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: out})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Error: "run history disabled"})
		return
	}
	runs, err := s.runs.GetRecentRuns(r.Context(), 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "run history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: runs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"sources": len(s.cfg.ActiveSources()),
	}
	if s.runs != nil {
		if stats, err := s.runs.GetSourceStats(r.Context()); err == nil {
			status["source_stats"] = stats
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] write response: %v", err)
	}
}
