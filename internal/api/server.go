package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/storysplit/internal/config"
	"github.com/dgallion1/storysplit/internal/heading"
	"github.com/dgallion1/storysplit/internal/library"
)

// Server is the HTTP API server for storysplit.
type Server struct {
	router   chi.Router
	library  *library.Store
	sessions *SessionStore
	table    *heading.Table
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(lib *library.Store, sessions *SessionStore, table *heading.Table, log *slog.Logger, cfg config.Config) *Server {
	if table == nil {
		table = heading.Default()
	}
	s := &Server{
		library:  lib,
		sessions: sessions,
		table:    table,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/files", s.handleListFiles)
		r.Get("/api/files/content", s.handleFileContent)
		r.Post("/api/save-story", s.handleSaveStory)
		r.Get("/api/stats", s.handleStats)

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/select", s.handleSelect)
				r.Put("/content", s.handleUpdateContent)
				r.Post("/split-markers", s.handleInsertSplitMarker)
				r.Post("/undo", s.handleUndo)
				r.Post("/redo", s.handleRedo)
				r.Post("/commit-split", s.handleCommitSplit)
				r.Post("/chapters/{chapterID}/merge-next", s.handleMergeNext)
				r.Delete("/chapters/{chapterID}", s.handleDeleteChapter)
				r.Get("/export", s.handleExport)
				r.Post("/save", s.handleSaveSession)
			})
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
