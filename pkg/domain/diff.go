package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two snapshots of the same session.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`
	Version   uint64 `json:"version"`

	// Added lists elements that did not exist before, in depth-first order.
	Added []string `json:"added,omitempty"`
	// Removed lists elements that no longer exist.
	Removed []string `json:"removed,omitempty"`
	// Moved lists elements whose parent or sibling index changed.
	Moved []string `json:"moved,omitempty"`
	// Updated lists elements whose props changed.
	Updated []string `json:"updated,omitempty"`

	// SelectedID is set when the selection changed. An empty string means cleared.
	SelectedID *string `json:"selected_id,omitempty"`
}

type placement struct {
	parent string
	index  int
	props  map[string]any
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, the diff describes the entire newSnap (initial load).
// Returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{
		SessionID: newSnap.SessionID,
		Version:   newSnap.Version,
	}

	var before map[string]placement
	if oldSnap != nil {
		before = index(oldSnap.Forest)
	}
	after := index(newSnap.Forest)

	for _, id := range newSnap.Forest.IDs() {
		cur := after[id]
		prev, existed := before[id]
		switch {
		case !existed:
			diff.Added = append(diff.Added, id)
		default:
			if prev.parent != cur.parent || prev.index != cur.index {
				diff.Moved = append(diff.Moved, id)
			}
			if !reflect.DeepEqual(prev.props, cur.props) {
				diff.Updated = append(diff.Updated, id)
			}
		}
	}
	if oldSnap != nil {
		for _, id := range oldSnap.Forest.IDs() {
			if _, ok := after[id]; !ok {
				diff.Removed = append(diff.Removed, id)
			}
		}
	}

	if oldSnap == nil {
		if newSnap.SelectedID != "" {
			diff.SelectedID = &newSnap.SelectedID
		}
	} else if oldSnap.SelectedID != newSnap.SelectedID {
		diff.SelectedID = &newSnap.SelectedID
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func index(f Forest) map[string]placement {
	out := make(map[string]placement)
	var visit func(nodes []*Node, parent string)
	visit = func(nodes []*Node, parent string) {
		for i, n := range nodes {
			out[n.ID] = placement{parent: parent, index: i, props: n.Props.ToMap()}
			visit(n.Children, n.ID)
		}
	}
	visit(f, "")
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Moved) == 0 &&
		len(d.Updated) == 0 &&
		d.SelectedID == nil
}
