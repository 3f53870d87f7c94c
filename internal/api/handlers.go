package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tobiaswren/mapforge/pkg/cache"
	"github.com/tobiaswren/mapforge/pkg/editor"
	"github.com/tobiaswren/mapforge/pkg/errors"
	"github.com/tobiaswren/mapforge/pkg/layout"
	"github.com/tobiaswren/mapforge/pkg/pipeline"
	"github.com/tobiaswren/mapforge/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Layout
// =============================================================================

// layoutRequest is the pipeline request body. world_id resolves against the
// server's world directory; world_path is not accepted over HTTP.
type layoutRequest struct {
	WorldID     string              `json:"world_id"`
	CurrentRoom string              `json:"current_room,omitempty"`
	Algorithm   string              `json:"algorithm,omitempty"`
	Grid        *layout.GridConfig  `json:"grid,omitempty"`
	Force       *layout.ForceConfig `json:"force,omitempty"`
	Formats     []string            `json:"formats,omitempty"`
	Detailed    bool                `json:"detailed,omitempty"`
	Theme       string              `json:"theme,omitempty"`
	Refresh     bool                `json:"refresh,omitempty"`
}

type layoutResponse struct {
	WorldHash string             `json:"world_hash"`
	Algorithm string             `json:"algorithm"`
	Nodes     []layout.Node      `json:"nodes"`
	Edges     []layout.Edge      `json:"edges"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"` // base64 in JSON
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := errors.ValidateWorldID(req.WorldID); err != nil {
		s.respondError(w, err)
		return
	}

	opts := pipeline.Options{
		WorldPath:   s.worldPath(req.WorldID),
		WorldID:     req.WorldID,
		CurrentRoom: req.CurrentRoom,
		Algorithm:   req.Algorithm,
		Formats:     req.Formats,
		Detailed:    req.Detailed,
		Theme:       req.Theme,
		Refresh:     req.Refresh,
		Store:       s.store,
		Logger:      s.logger,
	}
	if req.Grid != nil {
		opts.Grid = *req.Grid
	}
	if req.Force != nil {
		opts.Force = *req.Force
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, layoutResponse{
		WorldHash: result.WorldHash,
		Algorithm: result.Document.Algorithm,
		Nodes:     result.Document.Nodes,
		Edges:     result.Document.Edges,
		Artifacts: result.Artifacts,
		Stats:     result.Stats,
		CacheInfo: result.CacheInfo,
	})
}

// =============================================================================
// Session lifecycle
// =============================================================================

type createSessionRequest struct {
	WorldID     string `json:"world_id"`
	CurrentRoom string `json:"current_room,omitempty"`
	Algorithm   string `json:"algorithm,omitempty"`
}

type sessionResponse struct {
	SessionID string           `json:"session_id"`
	WorldID   string           `json:"world_id"`
	Nodes     []layout.Node    `json:"nodes"`
	Edges     []layout.Edge    `json:"edges"`
	Dirty     bool             `json:"dirty"`
	Pending   editor.ChangeSet `json:"pending"`
}

func (s *Server) sessionResponse(entry *sessionEntry) sessionResponse {
	return sessionResponse{
		SessionID: entry.session.ID(),
		WorldID:   entry.worldID,
		Nodes:     entry.session.Nodes(),
		Edges:     entry.session.Edges(),
		Dirty:     entry.session.Dirty(),
		Pending:   entry.session.PendingChanges(),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := errors.ValidateWorldID(req.WorldID); err != nil {
		s.respondError(w, err)
		return
	}

	opts := pipeline.Options{
		WorldPath:   s.worldPath(req.WorldID),
		WorldID:     req.WorldID,
		CurrentRoom: req.CurrentRoom,
		Algorithm:   req.Algorithm,
		Formats:     []string{pipeline.FormatJSON},
		Store:       s.store,
		Logger:      s.logger,
	}
	w2, worldHash, err := s.runner.LoadWorld(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	doc, _, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), w2, worldHash, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}

	sessOpts := editor.Options{}
	if s.store != nil {
		sessOpts.Saver = store.Saver(s.store, req.WorldID)
	}
	entry := &sessionEntry{
		session: editor.New(doc.Nodes, doc.Edges, sessOpts),
		worldID: req.WorldID,
	}
	s.register(entry)

	s.logger.Info("session opened", "session", entry.session.ID(), "world", req.WorldID)
	s.respondJSON(w, http.StatusCreated, s.sessionResponse(entry))
}

// withSession locates the session and runs fn with the entry lock held.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(entry *sessionEntry)) {
	sessionID := chi.URLParam(r, "sessionID")
	entry := s.lookup(sessionID)
	if entry == nil {
		s.respondError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", sessionID))
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(entry *sessionEntry) {
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !s.unregister(sessionID) {
		s.respondError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", sessionID))
		return
	}
	s.logger.Info("session closed", "session", sessionID)
	s.respondJSON(w, http.StatusNoContent, nil)
}

// =============================================================================
// Mutations
// =============================================================================

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	var pos layout.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.UpdateNodePosition(chi.URLParam(r, "nodeID"), pos)
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var spec editor.EdgeSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	s.withSession(w, r, func(entry *sessionEntry) {
		edge, err := entry.session.CreateEdge(spec)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, edge)
	})
}

func (s *Server) handleValidateEdge(w http.ResponseWriter, r *http.Request) {
	var spec editor.EdgeSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	s.withSession(w, r, func(entry *sessionEntry) {
		s.respondJSON(w, http.StatusOK, entry.session.ValidateEdgeCreation(spec))
	})
}

func (s *Server) handleUpdateEdge(w http.ResponseWriter, r *http.Request) {
	var update editor.EdgeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.UpdateEdge(chi.URLParam(r, "edgeID"), update)
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.DeleteEdge(chi.URLParam(r, "edgeID"))
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var update editor.RoomUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.UpdateRoom(chi.URLParam(r, "roomID"), update)
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

// =============================================================================
// History and persistence
// =============================================================================

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.Undo()
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.Redo()
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(entry *sessionEntry) {
		entry.session.Reset()
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(entry *sessionEntry) {
		// Persistence failures are transient by assumption; retry with
		// backoff before surfacing them. The session keeps its pending
		// change-set across failed attempts, so retries are idempotent.
		err := cache.RetryWithBackoff(r.Context(), func() error {
			if err := entry.session.Save(r.Context()); err != nil {
				if errors.Is(err, errors.ErrCodePersistence) {
					return cache.Retryable(err)
				}
				return err
			}
			return nil
		})
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, s.sessionResponse(entry))
	})
}
