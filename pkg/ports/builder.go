package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// Builder is the operation surface the view layer drives: one document, one selection.
// Implementations are single-threaded; front ends serving many clients serialize calls
// per session (see pkg/session).
type Builder interface {
	// AddElement creates an element of type t under the selected container (or at the
	// root) and selects it.
	AddElement(ctx context.Context, t domain.ElementType, props domain.Patch) (*domain.Node, error)

	// UpdateElement shallow-merges patch into the props of id.
	UpdateElement(ctx context.Context, id string, patch domain.Patch) (*domain.Node, error)

	// RemoveElement deletes id and its subtree.
	RemoveElement(ctx context.Context, id string) error

	// MoveElement relocates id under parentID ("" for root), before beforeID if possible.
	MoveElement(ctx context.Context, id, parentID, beforeID string) error

	// ReorderElements array-moves activeID onto overID's index among parentID's children.
	ReorderElements(ctx context.Context, parentID, activeID, overID string) error

	// SelectElement selects id; an empty id clears the selection.
	SelectElement(ctx context.Context, id string) error

	// HandleDrag resolves a completed drag gesture. It never fails; unusable gestures
	// are reported as dropped.
	HandleDrag(ctx context.Context, g domain.Gesture) domain.DragResult

	// Get returns a copy of element id.
	Get(id string) (*domain.Node, error)

	// Snapshot returns the current forest and selection.
	Snapshot() *domain.Snapshot

	// Reset starts a new, empty document.
	Reset(ctx context.Context)
}

// BuilderFactory creates the builder backing a new session.
type BuilderFactory func(sessionID string) (Builder, error)
