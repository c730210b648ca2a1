package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the document tree.
// It applies semantic styling:
// - Container: [[Subroutine]]
// - Button: ([Stadium])
// - Field: [/Parallelogram/]
// - Image: {{Hexagon}}
// - Text: [Rectangle]
// The selected element, if any, is highlighted.
func GenerateMermaid(f domain.Forest, selectedID string) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	f.Walk(func(n, parent *domain.Node) bool {
		safeID := sanitizeMermaidID(n.ID)

		opener, closer := "[", "]"
		switch n.Type {
		case domain.TypeContainer:
			opener, closer = "[[", "]]"
		case domain.TypeButton:
			opener, closer = "([", "])"
		case domain.TypeField:
			opener, closer = "[/", "/]"
		case domain.TypeImage:
			opener, closer = "{{", "}}"
		case domain.TypeText:
		}

		label := n.ID
		if caption := n.Caption(); caption != "" {
			label = fmt.Sprintf("%s <br/> %s", n.ID, strings.ReplaceAll(caption, "\"", "'"))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		if parent != nil {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(parent.ID), safeID))
		}
		return true
	})

	if selectedID != "" && f.Contains(selectedID) {
		sb.WriteString("\n    %% Selection\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(selectedID)))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
