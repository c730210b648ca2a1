package domain

import "encoding/json"

// Forest is the ordered sequence of root elements. It is the document itself.
type Forest []*Node

// Find returns the element with the given ID using a depth-first search, or nil.
func (f Forest) Find(id string) *Node {
	var found *Node
	f.Walk(func(n, _ *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Contains reports whether id resolves anywhere in the forest.
func (f Forest) Contains(id string) bool {
	return f.Find(id) != nil
}

// Walk visits every element depth-first, pre-order, together with its parent
// (nil for roots). Returning false stops the walk.
func (f Forest) Walk(fn func(n, parent *Node) bool) {
	walk(f, nil, fn)
}

func walk(nodes []*Node, parent *Node, fn func(n, parent *Node) bool) bool {
	for _, n := range nodes {
		if !fn(n, parent) {
			return false
		}
		if !walk(n.Children, n, fn) {
			return false
		}
	}
	return true
}

// Len counts every element in the forest, nested ones included.
func (f Forest) Len() int {
	count := 0
	f.Walk(func(_, _ *Node) bool {
		count++
		return true
	})
	return count
}

// IDs lists element IDs in depth-first order.
func (f Forest) IDs() []string {
	ids := make([]string, 0)
	f.Walk(func(n, _ *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Clone returns a deep copy of the forest.
func (f Forest) Clone() Forest {
	c := make(Forest, len(f))
	for i, n := range f {
		c[i] = n.Clone()
	}
	return c
}

// MarshalJSON encodes an empty forest as [] rather than null.
func (f Forest) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]*Node(f))
}
