package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Summary describes a snapshot as markdown: a header line and one table row per element.
func Summary(title string, snap *domain.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	count := snap.Forest.Len()
	selected := "_none_"
	if snap.SelectedID != "" {
		selected = "`" + snap.SelectedID + "`"
	}
	fmt.Fprintf(&sb, "**%d** elements, version **%d**, selection %s.\n\n", count, snap.Version, selected)
	if count == 0 {
		return sb.String()
	}

	sb.WriteString("| Element | Type | Parent | Content |\n")
	sb.WriteString("|---|---|---|---|\n")
	snap.Forest.Walk(func(n, parent *domain.Node) bool {
		parentID := "_root_"
		if parent != nil {
			parentID = "`" + parent.ID + "`"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", n.ID, n.Type, parentID, escapeCell(n.Caption()))
		return true
	})
	return sb.String()
}

var cellEscaper = strings.NewReplacer("|", "\\|", "\n", " ", "\r", " ")

// escapeCell keeps a caption on a single table row.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
