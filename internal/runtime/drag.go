package runtime

import (
	"github.com/aretw0/lattice/pkg/domain"
)

// Plan is the mutation a gesture resolves to.
type Plan struct {
	Outcome domain.DragOutcome
	Gesture domain.Gesture
	// Context is the target container for a reparent, or the shared parent
	// ("" for root) for a reorder.
	Context string
	Reason  string
}

// PlanDrag decides how a gesture applies to f without mutating anything:
// hovering a container reparents into it, hovering anything else reorders
// among shared siblings, and everything else is dropped.
func PlanDrag(f domain.Forest, g domain.Gesture) Plan {
	plan := Plan{Gesture: g}

	if g.ActiveID == "" || g.OverID == "" || g.ActiveID == g.OverID {
		plan.Outcome = domain.DragNoop
		return plan
	}

	over := f.Find(g.OverID)
	if over == nil {
		return dropped(plan, "over element not found")
	}
	if !f.Contains(g.ActiveID) {
		return dropped(plan, "active element not found")
	}

	if over.Type.IsContainer() {
		plan.Outcome = domain.DragReparent
		plan.Context = over.ID
		return plan
	}

	if g.ParentID != "" {
		plan.Outcome = domain.DragReorder
		plan.Context = g.ParentID
		return plan
	}

	activeParent, _ := ParentOf(f, g.ActiveID)
	overParent, _ := ParentOf(f, g.OverID)
	if activeParent != overParent {
		return dropped(plan, "elements do not share a parent")
	}
	plan.Outcome = domain.DragReorder
	plan.Context = activeParent
	return plan
}

// Result converts the plan into the report handed to callers.
func (p Plan) Result() domain.DragResult {
	return domain.DragResult{Gesture: p.Gesture, Outcome: p.Outcome, Reason: p.Reason}
}

func dropped(plan Plan, reason string) Plan {
	plan.Outcome = domain.DragDropped
	plan.Reason = reason
	return plan
}
