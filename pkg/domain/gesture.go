package domain

// Gesture is a completed drag: the dragged element, the element it was released over,
// and optionally the container whose sortable scope the gesture happened in.
type Gesture struct {
	ActiveID string `json:"active_id" yaml:"active_id" mapstructure:"active_id"`
	OverID   string `json:"over_id" yaml:"over_id" mapstructure:"over_id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty" mapstructure:"parent_id"`
}

// DragResult reports how a gesture was handled.
type DragResult struct {
	Gesture Gesture     `json:"gesture"`
	Outcome DragOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
}
