package domain

import (
	"encoding/json"
	"fmt"
)

// ElementType is the closed set of element kinds a document can hold.
type ElementType string

const (
	// TypeContainer holds an ordered list of child elements.
	TypeContainer ElementType = "container"
	// TypeText is a paragraph of editable text.
	TypeText ElementType = "text"
	// TypeImage displays a picture.
	TypeImage ElementType = "image"
	// TypeButton is a clickable button with a label.
	TypeButton ElementType = "button"
	// TypeField is a form input with a placeholder.
	TypeField ElementType = "field"
)

// legacyContainer is the name older documents used for containers.
const legacyContainer = "div"

// ElementTypes lists every element kind in toolbar order.
var ElementTypes = []ElementType{TypeContainer, TypeText, TypeImage, TypeButton, TypeField}

// ParseElementType converts a wire string into an ElementType.
func ParseElementType(s string) (ElementType, error) {
	if s == legacyContainer {
		return TypeContainer, nil
	}
	t := ElementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown element type %q", ErrInvalidNode, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known element kinds.
func (t ElementType) Valid() bool {
	switch t {
	case TypeContainer, TypeText, TypeImage, TypeButton, TypeField:
		return true
	}
	return false
}

// IsContainer reports whether elements of this type may hold children.
func (t ElementType) IsContainer() bool {
	return t == TypeContainer
}

// Prefix is the short tag used when generating IDs for this type (c1, t1, ...).
func (t ElementType) Prefix() string {
	switch t {
	case TypeContainer:
		return "c"
	case TypeText:
		return "t"
	case TypeImage:
		return "i"
	case TypeButton:
		return "b"
	case TypeField:
		return "f"
	}
	return "n"
}

// Node is a single typed element in the document tree.
// Children is non-nil if and only if Type is TypeContainer.
type Node struct {
	ID       string      `json:"id" yaml:"id"`
	Type     ElementType `json:"type" yaml:"type"`
	Props    Props       `json:"props" yaml:"props"`
	Children []*Node     `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewNode builds an element of the given type with its default props.
func NewNode(id string, t ElementType) *Node {
	n := &Node{
		ID:    id,
		Type:  t,
		Props: DefaultProps(t),
	}
	if t.IsContainer() {
		n.Children = []*Node{}
	}
	return n
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:    n.ID,
		Type:  n.Type,
		Props: n.Props.Clone(),
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk visits n and its descendants depth-first, pre-order.
// Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// nodeWire is the collaborator-facing shape of a Node.
type nodeWire struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Props    Props    `json:"props"`
	Children *[]*Node `json:"children,omitempty"`
}

// MarshalJSON always emits children for containers, even when empty.
func (n Node) MarshalJSON() ([]byte, error) {
	w := nodeWire{ID: n.ID, Type: string(n.Type), Props: n.Props}
	if n.Type.IsContainer() {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		w.Children = &children
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the legacy "div" type and normalizes container children.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := ParseElementType(w.Type)
	if err != nil {
		return err
	}
	n.ID = w.ID
	n.Type = t
	n.Props = w.Props
	n.Children = nil
	if w.Children != nil {
		n.Children = *w.Children
	}
	if t.IsContainer() && n.Children == nil {
		n.Children = []*Node{}
	}
	return nil
}

// Caption returns the type's payload value (text, title, placeholder or src), if set.
func (n *Node) Caption() string {
	switch n.Type {
	case TypeText, TypeButton:
		return n.Props.Text
	case TypeContainer:
		return n.Props.Title
	case TypeField:
		return n.Props.Placeholder
	case TypeImage:
		return n.Props.Src
	}
	return ""
}
