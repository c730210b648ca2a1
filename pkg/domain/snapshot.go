package domain

// Snapshot is the state handed to the view layer after every successful change.
type Snapshot struct {
	SessionID  string `json:"session_id,omitempty"`
	Version    uint64 `json:"version"`
	Forest     Forest `json:"forest"`
	SelectedID string `json:"selected_id,omitempty"`
}
