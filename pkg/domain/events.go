package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMutation  EventType = "mutation"
	EventSelection EventType = "selection"
	EventDrag      EventType = "drag"
	EventPublish   EventType = "publish"
)

// Mutation operation names, as reported in events and errors.
const (
	OpInsert  = "insert"
	OpRemove  = "remove"
	OpUpdate  = "update"
	OpMove    = "move"
	OpReorder = "reorder"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// MutationEvent reports the result of one Mutation Engine call.
type MutationEvent struct {
	EventBase
	Op        string `json:"op"`
	ElementID string `json:"element_id"`
	Err       error  `json:"-"`
	NodeCount int    `json:"node_count"`
}

// SelectionEvent reports a change of the selected element.
type SelectionEvent struct {
	EventBase
	SelectedID string `json:"selected_id,omitempty"`
	Previous   string `json:"previous,omitempty"`
}

// DragOutcome is how a drag gesture was resolved.
type DragOutcome string

const (
	// DragNoop means the gesture carried nothing to do (same element, or missing IDs).
	DragNoop DragOutcome = "noop"
	// DragReparent means the active element was moved into the hovered container.
	DragReparent DragOutcome = "reparent"
	// DragReorder means the active element changed position among its siblings.
	DragReorder DragOutcome = "reorder"
	// DragDropped means preconditions were not met and the forest was left unchanged.
	DragDropped DragOutcome = "dropped"
)

// DragEvent reports how a completed drag gesture was handled.
type DragEvent struct {
	EventBase
	ActiveID string      `json:"active_id"`
	OverID   string      `json:"over_id"`
	ParentID string      `json:"parent_id,omitempty"`
	Outcome  DragOutcome `json:"outcome"`
	Reason   string      `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for builder observability.
type LifecycleHooks struct {
	OnMutation  func(context.Context, *MutationEvent)
	OnSelection func(context.Context, *SelectionEvent)
	OnDrag      func(context.Context, *DragEvent)
	OnPublish   func(context.Context, *Snapshot)
}
