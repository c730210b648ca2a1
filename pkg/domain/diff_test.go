package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func textNode(id, text string) *Node {
	n := NewNode(id, TypeText)
	n.Props.Text = text
	return n
}

func TestDiff(t *testing.T) {
	container := func(id string, children ...*Node) *Node {
		n := NewNode(id, TypeContainer)
		n.Children = append(n.Children, children...)
		return n
	}

	tests := []struct {
		name    string
		old     *Snapshot
		new     *Snapshot
		added   []string
		removed []string
		moved   []string
		updated []string
		nilDiff bool
	}{
		{
			name:  "Initial Load (Old is Nil)",
			old:   nil,
			new:   &Snapshot{SessionID: "s", Forest: Forest{container("c1", textNode("t1", "a"))}},
			added: []string{"c1", "t1"},
		},
		{
			name:    "No Changes",
			old:     &Snapshot{SessionID: "s", Forest: Forest{textNode("t1", "a")}},
			new:     &Snapshot{SessionID: "s", Forest: Forest{textNode("t1", "a")}},
			nilDiff: true,
		},
		{
			name:    "Props Update",
			old:     &Snapshot{SessionID: "s", Forest: Forest{textNode("t1", "a")}},
			new:     &Snapshot{SessionID: "s", Forest: Forest{textNode("t1", "b")}},
			updated: []string{"t1"},
		},
		{
			name:    "Reparent And Remove",
			old:     &Snapshot{SessionID: "s", Forest: Forest{container("c1"), textNode("t1", "a"), textNode("t2", "b")}},
			new:     &Snapshot{SessionID: "s", Forest: Forest{container("c1", textNode("t1", "a"))}},
			removed: []string{"t2"},
			moved:   []string{"t1"},
		},
		{
			name:  "Sibling Swap",
			old:   &Snapshot{SessionID: "s", Forest: Forest{textNode("a", ""), textNode("b", "")}},
			new:   &Snapshot{SessionID: "s", Forest: Forest{textNode("b", ""), textNode("a", "")}},
			moved: []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.nilDiff {
				if got != nil {
					t.Fatalf("expected nil diff, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected diff, got nil")
			}
			assertIDs(t, "added", tt.added, got.Added)
			assertIDs(t, "removed", tt.removed, got.Removed)
			assertIDs(t, "moved", tt.moved, got.Moved)
			assertIDs(t, "updated", tt.updated, got.Updated)
		})
	}
}

func TestDiff_Selection(t *testing.T) {
	old := &Snapshot{SessionID: "s", Forest: Forest{textNode("t1", "")}, SelectedID: "t1"}
	cleared := &Snapshot{SessionID: "s", Forest: Forest{textNode("t1", "")}}

	d := Diff(old, cleared)
	if d == nil || d.SelectedID == nil || *d.SelectedID != "" {
		t.Fatalf("expected cleared selection in diff, got %+v", d)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"selected_id":""`) {
		t.Errorf("expected explicit empty selection, got %s", data)
	}
}

func assertIDs(t *testing.T, label string, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: want %v, got %v", label, want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("%s[%d]: want %q, got %q", label, i, want[i], got[i])
		}
	}
}
