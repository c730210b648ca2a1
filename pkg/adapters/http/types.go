package http

import "github.com/aretw0/lattice/pkg/domain"

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// SessionResponse identifies a session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// AddElementRequest is the body of POST /sessions/{sid}/elements.
type AddElementRequest struct {
	Type  string       `json:"type"`
	Props domain.Patch `json:"props,omitempty"`
}

// UpdateElementRequest is the body of PATCH /sessions/{sid}/elements/{id}.
type UpdateElementRequest struct {
	Props domain.Patch `json:"props"`
}

// MoveElementRequest is the body of POST /sessions/{sid}/elements/{id}/move.
// An empty parent_id moves to the root.
type MoveElementRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	BeforeID string `json:"before_id,omitempty"`
}

// ReorderRequest is the body of POST /sessions/{sid}/reorder.
type ReorderRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

// SelectRequest is the body of PUT /sessions/{sid}/selection.
type SelectRequest struct {
	ID *string `json:"id"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
