// Package outline prints the document tree as an indented outline.
package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/ddddddO/gtree"
	"github.com/muesli/termenv"
)

// Options tunes the outline.
type Options struct {
	// Title labels the top of the tree.
	Title string
	// Profile colors the output. termenv.Ascii disables styling.
	Profile termenv.Profile
}

// Render writes the forest as a tree, one line per element, marking the selection.
func Render(w io.Writer, f domain.Forest, selectedID string, opts Options) error {
	title := opts.Title
	if title == "" {
		title = "document"
	}
	root := gtree.NewRoot(title)
	if len(f) == 0 {
		root.Add(opts.Profile.String("(empty)").Faint().String())
	}

	var add func(parent *gtree.Node, nodes []*domain.Node)
	add = func(parent *gtree.Node, nodes []*domain.Node) {
		for _, n := range nodes {
			add(parent.Add(label(n, n.ID == selectedID, opts.Profile)), n.Children)
		}
	}
	add(root, f)

	if err := gtree.OutputFromRoot(w, root); err != nil {
		return fmt.Errorf("failed to render outline: %w", err)
	}
	return nil
}

// String is Render into a string.
func String(f domain.Forest, selectedID string, opts Options) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, f, selectedID, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func label(n *domain.Node, selected bool, p termenv.Profile) string {
	id := p.String(n.ID).Bold()
	kind := p.String(string(n.Type)).Foreground(p.Color(typeColor(n.Type)))

	text := fmt.Sprintf("%s %s", id, kind)
	if caption := n.Caption(); caption != "" {
		text += fmt.Sprintf(" %q", caption)
	}
	if selected {
		text += " " + p.String("◀ selected").Foreground(p.Color("#fbc02d")).String()
	}
	return text
}

func typeColor(t domain.ElementType) string {
	switch t {
	case domain.TypeContainer:
		return "#818cf8"
	case domain.TypeText:
		return "#a3a3a3"
	case domain.TypeImage:
		return "#34d399"
	case domain.TypeButton:
		return "#f472b6"
	case domain.TypeField:
		return "#fbbf24"
	}
	return "#ffffff"
}
