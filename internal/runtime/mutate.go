package runtime

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// The functions in this file are the Mutation Engine. Each one is a pure function of
// (forest, arguments): the input forest is never modified, and on failure it is
// returned as-is together with the error. On success only the nodes on the
// root-to-target path are copied; every other subtree is shared with the input.

// Policy constrains the shape of the tree beyond the structural invariants.
type Policy struct {
	// MaxContainerDepth limits how many containers may be nested inside each other.
	// Zero means unlimited. One forbids containers inside containers.
	MaxContainerDepth int
}

// Insert appends node at the end of the root forest (parentID == "") or at the end of
// the children of the container parentID.
func Insert(f domain.Forest, node *domain.Node, parentID string, policy Policy) (domain.Forest, error) {
	n, err := prepare(node)
	if err != nil {
		return f, err
	}

	var dup string
	n.Walk(func(sub *domain.Node) bool {
		if f.Contains(sub.ID) {
			dup = sub.ID
			return false
		}
		return true
	})
	if dup != "" {
		return f, fmt.Errorf("%w: %q", domain.ErrDuplicateID, dup)
	}

	if parentID == "" {
		if err := policy.check(0, n); err != nil {
			return f, err
		}
		return appendNode(f, n), nil
	}

	path, ok := locate(f, parentID)
	if !ok {
		return f, fmt.Errorf("%w: parent %q not found", domain.ErrInvalidTarget, parentID)
	}
	parent := nodeAt(f, path)
	if !parent.Type.IsContainer() {
		return f, fmt.Errorf("%w: parent %q is a %s, not a container", domain.ErrInvalidTarget, parentID, parent.Type)
	}
	if err := policy.check(len(path), n); err != nil {
		return f, err
	}

	return withChildren(f, path, func(children []*domain.Node) []*domain.Node {
		return appendNode(children, n)
	}), nil
}

// Remove deletes the element id together with its subtree and returns the removed node.
func Remove(f domain.Forest, id string) (domain.Forest, *domain.Node, error) {
	path, ok := locate(f, id)
	if !ok {
		return f, nil, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	removed := nodeAt(f, path)
	next := detach(f, path)
	return next, removed, nil
}

// Update shallow-merges patch into the props of element id. ID and type never change.
func Update(f domain.Forest, id string, patch domain.Patch) (domain.Forest, *domain.Node, error) {
	path, ok := locate(f, id)
	if !ok {
		return f, nil, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	target := nodeAt(f, path)

	props, err := target.Props.Apply(target.Type, patch)
	if err != nil {
		return f, nil, err
	}
	updated := &domain.Node{
		ID:       target.ID,
		Type:     target.Type,
		Props:    props,
		Children: target.Children,
	}

	last := path[len(path)-1]
	next := withChildren(f, path[:len(path)-1], func(siblings []*domain.Node) []*domain.Node {
		c := make([]*domain.Node, len(siblings))
		copy(c, siblings)
		c[last] = updated
		return c
	})
	return next, updated, nil
}

// Move relocates element id, with its subtree, under newParentID ("" for root).
// It lands immediately before beforeID when that element is among the target's
// children, otherwise at the end.
func Move(f domain.Forest, id, newParentID, beforeID string, policy Policy) (domain.Forest, error) {
	path, ok := locate(f, id)
	if !ok {
		return f, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	moving := nodeAt(f, path)

	if newParentID != "" {
		if newParentID == id || isDescendant(moving, newParentID) {
			return f, fmt.Errorf("%w: %q cannot be nested under %q", domain.ErrCycle, id, newParentID)
		}
		target := f.Find(newParentID)
		if target == nil {
			return f, fmt.Errorf("%w: parent %q not found", domain.ErrInvalidTarget, newParentID)
		}
		if !target.Type.IsContainer() {
			return f, fmt.Errorf("%w: parent %q is a %s, not a container", domain.ErrInvalidTarget, newParentID, target.Type)
		}
	}

	detached := detach(f, path)

	var parentPath []int
	siblings := []*domain.Node(detached)
	if newParentID != "" {
		// The target cannot be inside the detached subtree, so it still resolves.
		parentPath, _ = locate(detached, newParentID)
		siblings = nodeAt(detached, parentPath).Children
	}
	if err := policy.check(len(parentPath), moving); err != nil {
		return f, err
	}

	at := len(siblings)
	if beforeID != "" {
		if i := indexOf(siblings, beforeID); i >= 0 {
			at = i
		}
	}

	return withChildren(detached, parentPath, func(children []*domain.Node) []*domain.Node {
		return insertAt(children, at, moving)
	}), nil
}

// Reorder moves activeID to the index occupied by overID among the children of parentID
// ("" for root), shifting the elements in between. Both must already be siblings there.
func Reorder(f domain.Forest, parentID, activeID, overID string) (domain.Forest, error) {
	var parentPath []int
	siblings := []*domain.Node(f)
	if parentID != "" {
		p, ok := locate(f, parentID)
		if !ok {
			return f, fmt.Errorf("%w: parent %q not found", domain.ErrInvalidTarget, parentID)
		}
		parent := nodeAt(f, p)
		if !parent.Type.IsContainer() {
			return f, fmt.Errorf("%w: parent %q is a %s, not a container", domain.ErrInvalidTarget, parentID, parent.Type)
		}
		parentPath = p
		siblings = parent.Children
	}

	from := indexOf(siblings, activeID)
	to := indexOf(siblings, overID)
	if from < 0 || to < 0 {
		return f, fmt.Errorf("%w: %q and %q are not siblings under %s", domain.ErrInvalidTarget, activeID, overID, contextName(parentID))
	}
	if from == to {
		return f, nil
	}

	return withChildren(f, parentPath, func(children []*domain.Node) []*domain.Node {
		return arrayMove(children, from, to)
	}), nil
}

// ParentOf returns the ID of the container holding id, or "" when id is a root.
func ParentOf(f domain.Forest, id string) (string, bool) {
	path, ok := locate(f, id)
	if !ok {
		return "", false
	}
	if len(path) == 1 {
		return "", true
	}
	return nodeAt(f, path[:len(path)-1]).ID, true
}

// Ancestors returns the IDs of the containers enclosing id, outermost first.
func Ancestors(f domain.Forest, id string) ([]string, bool) {
	path, ok := locate(f, id)
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(path)-1)
	level := []*domain.Node(f)
	for _, i := range path[:len(path)-1] {
		ids = append(ids, level[i].ID)
		level = level[i].Children
	}
	return ids, true
}

func contextName(parentID string) string {
	if parentID == "" {
		return "root"
	}
	return fmt.Sprintf("%q", parentID)
}

// prepare validates an incoming element and returns a private copy of it.
func prepare(node *domain.Node) (*domain.Node, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: nil element", domain.ErrInvalidNode)
	}
	n := node.Clone()

	seen := make(map[string]bool)
	var err error
	n.Walk(func(sub *domain.Node) bool {
		switch {
		case sub.ID == "":
			err = fmt.Errorf("%w: empty id", domain.ErrInvalidNode)
		case seen[sub.ID]:
			err = fmt.Errorf("%w: %q", domain.ErrDuplicateID, sub.ID)
		case !sub.Type.Valid():
			err = fmt.Errorf("%w: %q has unknown type %q", domain.ErrInvalidNode, sub.ID, sub.Type)
		case !sub.Type.IsContainer() && len(sub.Children) > 0:
			err = fmt.Errorf("%w: %s element %q cannot hold children", domain.ErrInvalidNode, sub.Type, sub.ID)
		}
		if err == nil {
			err = sub.Props.ValidateFor(sub.Type)
		}
		if err != nil {
			return false
		}
		seen[sub.ID] = true
		if sub.Type.IsContainer() && sub.Children == nil {
			sub.Children = []*domain.Node{}
		}
		if !sub.Type.IsContainer() {
			sub.Children = nil
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// check enforces MaxContainerDepth for a subtree placed under parentDepth containers.
func (p Policy) check(parentDepth int, n *domain.Node) error {
	if p.MaxContainerDepth <= 0 {
		return nil
	}
	if parentDepth+containerHeight(n) > p.MaxContainerDepth {
		return fmt.Errorf("%w: %q would reach depth %d, limit is %d", domain.ErrNestingLimit, n.ID, parentDepth+containerHeight(n), p.MaxContainerDepth)
	}
	return nil
}

// containerHeight is the longest chain of nested containers starting at n.
func containerHeight(n *domain.Node) int {
	if !n.Type.IsContainer() {
		return 0
	}
	deepest := 0
	for _, child := range n.Children {
		if h := containerHeight(child); h > deepest {
			deepest = h
		}
	}
	return 1 + deepest
}

func isDescendant(n *domain.Node, id string) bool {
	found := false
	for _, child := range n.Children {
		child.Walk(func(sub *domain.Node) bool {
			if sub.ID == id {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// locate returns the index path from the root to id.
func locate(nodes []*domain.Node, id string) ([]int, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return []int{i}, true
		}
		if sub, ok := locate(n.Children, id); ok {
			return append([]int{i}, sub...), true
		}
	}
	return nil, false
}

func nodeAt(f domain.Forest, path []int) *domain.Node {
	level := []*domain.Node(f)
	var n *domain.Node
	for _, i := range path {
		n = level[i]
		level = n.Children
	}
	return n
}

// withChildren rebuilds the path down to the node at parentPath (the root list when
// empty), replacing its children with edit(children). edit must not modify its argument.
func withChildren(f domain.Forest, parentPath []int, edit func([]*domain.Node) []*domain.Node) domain.Forest {
	return domain.Forest(rewrite(f, parentPath, edit))
}

func rewrite(level []*domain.Node, path []int, edit func([]*domain.Node) []*domain.Node) []*domain.Node {
	if len(path) == 0 {
		return edit(level)
	}
	i := path[0]
	copied := *level[i]
	copied.Children = rewrite(copied.Children, path[1:], edit)

	out := make([]*domain.Node, len(level))
	copy(out, level)
	out[i] = &copied
	return out
}

func detach(f domain.Forest, path []int) domain.Forest {
	last := path[len(path)-1]
	return withChildren(f, path[:len(path)-1], func(siblings []*domain.Node) []*domain.Node {
		return removeAt(siblings, last)
	})
}

func indexOf(nodes []*domain.Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func appendNode(nodes []*domain.Node, n *domain.Node) []*domain.Node {
	out := make([]*domain.Node, len(nodes), len(nodes)+1)
	copy(out, nodes)
	return append(out, n)
}

func removeAt(nodes []*domain.Node, i int) []*domain.Node {
	out := make([]*domain.Node, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...)
}

func insertAt(nodes []*domain.Node, i int, n *domain.Node) []*domain.Node {
	out := make([]*domain.Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}

// arrayMove removes the element at from and reinserts it at to.
func arrayMove(nodes []*domain.Node, from, to int) []*domain.Node {
	moving := nodes[from]
	return insertAt(removeAt(nodes, from), to, moving)
}
