package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes the sessions of a Manager as a JSON API.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler serves h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for the sessions held by mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: mgr,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Get("/forest", s.GetForest)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/elements", s.AddElement)
			r.Get("/elements/{id}", s.GetElement)
			r.Patch("/elements/{id}", s.UpdateElement)
			r.Delete("/elements/{id}", s.RemoveElement)
			r.Post("/elements/{id}/move", s.MoveElement)
			r.Post("/reorder", s.ReorderElements)
			r.Put("/selection", s.SelectElement)
			r.Post("/drag", s.HandleDrag)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "lattice-http",
		"version": strings.TrimSpace(lattice.Version),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List(r.Context())})
}

// CreateSession handles POST /sessions. The body and its session_id are optional.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, &body) {
			return
		}
	}
	sid, err := s.Sessions.Create(r.Context(), body.SessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: sid})
}

// DeleteSession handles DELETE /sessions/{sid}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if err := s.Sessions.Delete(r.Context(), sid); err != nil {
		s.fail(w, r, err)
		return
	}
	s.Streams.Close(sid)
	w.WriteHeader(http.StatusNoContent)
}

// GetForest handles GET /sessions/{sid}/forest.
func (s *Server) GetForest(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Snapshot(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetElement handles GET /sessions/{sid}/elements/{id}.
func (s *Server) GetElement(w http.ResponseWriter, r *http.Request) {
	var node *domain.Node
	err := s.Sessions.WithLock(r.Context(), chi.URLParam(r, "sid"), func(_ context.Context, b ports.Builder) error {
		var err error
		node, err = b.Get(chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// AddElement handles POST /sessions/{sid}/elements.
func (s *Server) AddElement(w http.ResponseWriter, r *http.Request) {
	var body AddElementRequest
	if !s.decode(w, r, &body) {
		return
	}
	typ, err := domain.ParseElementType(body.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var node *domain.Node
	err = s.mutate(r, func(ctx context.Context, b ports.Builder) error {
		var err error
		node, err = b.AddElement(ctx, typ, body.Props)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// UpdateElement handles PATCH /sessions/{sid}/elements/{id}.
func (s *Server) UpdateElement(w http.ResponseWriter, r *http.Request) {
	var body UpdateElementRequest
	if !s.decode(w, r, &body) {
		return
	}
	var node *domain.Node
	err := s.mutate(r, func(ctx context.Context, b ports.Builder) error {
		var err error
		node, err = b.UpdateElement(ctx, chi.URLParam(r, "id"), body.Props)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// RemoveElement handles DELETE /sessions/{sid}/elements/{id}.
func (s *Server) RemoveElement(w http.ResponseWriter, r *http.Request) {
	err := s.mutate(r, func(ctx context.Context, b ports.Builder) error {
		return b.RemoveElement(ctx, chi.URLParam(r, "id"))
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveElement handles POST /sessions/{sid}/elements/{id}/move.
func (s *Server) MoveElement(w http.ResponseWriter, r *http.Request) {
	var body MoveElementRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.respondSnapshot(w, r, func(ctx context.Context, b ports.Builder) error {
		return b.MoveElement(ctx, chi.URLParam(r, "id"), body.ParentID, body.BeforeID)
	})
}

// ReorderElements handles POST /sessions/{sid}/reorder.
func (s *Server) ReorderElements(w http.ResponseWriter, r *http.Request) {
	var body ReorderRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.respondSnapshot(w, r, func(ctx context.Context, b ports.Builder) error {
		return b.ReorderElements(ctx, body.ParentID, body.ActiveID, body.OverID)
	})
}

// SelectElement handles PUT /sessions/{sid}/selection. A null id clears the selection.
func (s *Server) SelectElement(w http.ResponseWriter, r *http.Request) {
	var body SelectRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := ""
	if body.ID != nil {
		id = *body.ID
	}
	s.respondSnapshot(w, r, func(ctx context.Context, b ports.Builder) error {
		return b.SelectElement(ctx, id)
	})
}

// HandleDrag handles POST /sessions/{sid}/drag. Unusable gestures still answer 200
// with a dropped outcome.
func (s *Server) HandleDrag(w http.ResponseWriter, r *http.Request) {
	var body domain.Gesture
	if !s.decode(w, r, &body) {
		return
	}
	var result domain.DragResult
	err := s.mutate(r, func(ctx context.Context, b ports.Builder) error {
		result = b.HandleDrag(ctx, body)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// mutate runs fn under the session lock and broadcasts the resulting diff to SSE clients.
func (s *Server) mutate(r *http.Request, fn func(context.Context, ports.Builder) error) error {
	sid := chi.URLParam(r, "sid")
	return s.Sessions.WithLock(r.Context(), sid, func(ctx context.Context, b ports.Builder) error {
		before := b.Snapshot()
		if err := fn(ctx, b); err != nil {
			return err
		}
		if diff := domain.Diff(before, b.Snapshot()); diff != nil {
			if data, err := json.Marshal(diff); err == nil {
				s.Streams.Broadcast(sid, string(data))
			}
		}
		return nil
	})
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, fn func(context.Context, ports.Builder) error) {
	var snap *domain.Snapshot
	err := s.mutate(r, func(ctx context.Context, b ports.Builder) error {
		if err := fn(ctx, b); err != nil {
			return err
		}
		snap = b.Snapshot()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid request body: %v", err),
			Code:  "bad_request",
		})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "code", code, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// classify maps domain errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "canceled"
	}
	code := domain.Code(err)
	switch code {
	case "session_not_found", "not_found":
		return http.StatusNotFound, code
	case "session_exists", "nesting_limit", "invalid_target", "cycle", "duplicate_id":
		return http.StatusConflict, code
	case "invalid_props", "invalid_node":
		return http.StatusBadRequest, code
	default:
		return http.StatusInternalServerError, code
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
