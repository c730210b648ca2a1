package runtime

import (
	"github.com/aretw0/lattice/pkg/domain"
)

// Engine ties the Tree Store, the Mutation Engine and the Selection Tracker together.
// Every mutating call either replaces the forest with a new valid one or leaves it
// untouched and returns the error. The selection is reconciled before the call
// returns, so a removed element is never observed as selected.
//
// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	store     *Store
	selection Selection
	policy    Policy
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPolicy sets the nesting policy enforced by insert and move.
func WithPolicy(p Policy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// NewEngine creates an engine with an empty forest and no selection.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{store: NewStore()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the read side.
func (e *Engine) Store() *Store {
	return e.store
}

// Policy returns the nesting policy in force.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Selected returns the selected element ID, if any.
func (e *Engine) Selected() (string, bool) {
	return e.selection.Selected()
}

// Select marks id as the selected element.
func (e *Engine) Select(id string) error {
	return e.selection.Select(e.store, id)
}

// ClearSelection drops the selection.
func (e *Engine) ClearSelection() {
	e.selection.Clear()
}

// Insert adds node under parentID, or at the end of the root forest when parentID is empty.
func (e *Engine) Insert(node *domain.Node, parentID string) error {
	next, err := Insert(e.store.View(), node, parentID, e.policy)
	if err != nil {
		return err
	}
	e.commit(next)
	return nil
}

// Remove deletes id and its subtree, clearing the selection if it was inside.
func (e *Engine) Remove(id string) (*domain.Node, error) {
	next, removed, err := Remove(e.store.View(), id)
	if err != nil {
		return nil, err
	}
	e.commit(next)
	return removed.Clone(), nil
}

// Update shallow-merges patch into the props of id.
func (e *Engine) Update(id string, patch domain.Patch) (*domain.Node, error) {
	next, updated, err := Update(e.store.View(), id, patch)
	if err != nil {
		return nil, err
	}
	e.commit(next)
	return updated.Clone(), nil
}

// Move relocates id under newParentID, before beforeID when possible.
func (e *Engine) Move(id, newParentID, beforeID string) error {
	next, err := Move(e.store.View(), id, newParentID, beforeID, e.policy)
	if err != nil {
		return err
	}
	e.commit(next)
	return nil
}

// Reorder performs an array move of activeID onto overID's index under parentID.
func (e *Engine) Reorder(parentID, activeID, overID string) error {
	next, err := Reorder(e.store.View(), parentID, activeID, overID)
	if err != nil {
		return err
	}
	e.commit(next)
	return nil
}

// Drag resolves a gesture and applies it. Failures never surface as errors: the
// returned plan reports DragDropped with a reason and the forest is unchanged.
func (e *Engine) Drag(g domain.Gesture) Plan {
	plan := PlanDrag(e.store.View(), g)

	var err error
	switch plan.Outcome {
	case domain.DragReparent:
		err = e.Move(g.ActiveID, plan.Context, "")
	case domain.DragReorder:
		err = e.Reorder(plan.Context, g.ActiveID, g.OverID)
	}
	if err != nil {
		return dropped(plan, err.Error())
	}
	return plan
}

// Reset starts a fresh document: empty forest and no selection.
func (e *Engine) Reset() {
	e.selection.Clear()
	e.store.replace(domain.Forest{})
}

func (e *Engine) commit(next domain.Forest) {
	e.store.replace(next)
	e.selection.Reconcile(e.store)
}
