// Package api exposes the layout pipeline and edit sessions over HTTP.
//
// # Endpoints
//
//	GET  /health                                    liveness probe
//	POST /api/v1/layout                             run the layout pipeline
//	POST /api/v1/sessions                           open an edit session
//	GET  /api/v1/sessions/{sessionID}               session state
//	DELETE /api/v1/sessions/{sessionID}             close a session
//	PUT  /api/v1/sessions/{sessionID}/nodes/{nodeID}/position
//	POST /api/v1/sessions/{sessionID}/edges         create an edge
//	POST /api/v1/sessions/{sessionID}/edges/validate
//	PATCH /api/v1/sessions/{sessionID}/edges/{edgeID}
//	DELETE /api/v1/sessions/{sessionID}/edges/{edgeID}
//	PATCH /api/v1/sessions/{sessionID}/rooms/{roomID}
//	POST /api/v1/sessions/{sessionID}/undo
//	POST /api/v1/sessions/{sessionID}/redo
//	POST /api/v1/sessions/{sessionID}/reset
//	POST /api/v1/sessions/{sessionID}/save
//
// Sessions live in memory; they are owned by this process and vanish on
// restart. Persisted change-sets survive via the configured store.
package api

import (
	"net/http"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tobiaswren/mapforge/pkg/editor"
	"github.com/tobiaswren/mapforge/pkg/pipeline"
	"github.com/tobiaswren/mapforge/pkg/store"
)

// Config configures the API server.
type Config struct {
	// WorldDir is the directory containing world JSON files. World IDs in
	// requests resolve to <WorldDir>/<worldID>.json.
	WorldDir string

	// Runner executes layout pipelines. Required.
	Runner *pipeline.Runner

	// Store persists session change-sets. Optional; sessions are
	// in-memory only when nil.
	Store store.Store

	// Logger for request and handler logging.
	Logger *log.Logger
}

// Server is the HTTP API for layout computation and interactive editing.
type Server struct {
	worldDir string
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// sessionEntry serializes access to one session: editor sessions are not
// safe for concurrent use, so each request takes the entry lock.
type sessionEntry struct {
	mu      sync.Mutex
	session *editor.Session
	worldID string
}

// NewServer creates an API server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		worldDir: cfg.WorldDir,
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   logger,
		sessions: make(map[string]*sessionEntry),
	}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCloseSession)
				r.Put("/nodes/{nodeID}/position", s.handleUpdatePosition)
				r.Post("/edges", s.handleCreateEdge)
				r.Post("/edges/validate", s.handleValidateEdge)
				r.Patch("/edges/{edgeID}", s.handleUpdateEdge)
				r.Delete("/edges/{edgeID}", s.handleDeleteEdge)
				r.Patch("/rooms/{roomID}", s.handleUpdateRoom)
				r.Post("/undo", s.handleUndo)
				r.Post("/redo", s.handleRedo)
				r.Post("/reset", s.handleReset)
				r.Post("/save", s.handleSave)
			})
		})
	})

	return r
}

// worldPath resolves a world ID to its file under the world directory.
func (s *Server) worldPath(worldID string) string {
	return filepath.Join(s.worldDir, worldID+".json")
}

// lookup returns the session entry for an ID, or nil.
func (s *Server) lookup(sessionID string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID]
}

func (s *Server) register(entry *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[entry.session.ID()] = entry
}

func (s *Server) unregister(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}
