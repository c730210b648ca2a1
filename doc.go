/*
Package lattice is the document engine behind a visual, drag-and-drop page builder.

It owns the hierarchical document (a forest of typed elements: containers, text,
images, buttons and fields), applies every edit the editor issues as an atomic
mutation, tracks the selected element, and turns completed drag gestures into
either a reparent or a sibling reorder.

# Concept

The view layer never touches the tree. It calls the Builder, receives snapshots,
and re-renders. Each mutation either produces a new valid forest or fails with a
sentinel error (see pkg/domain) and leaves the document exactly as it was.

# Key Features

  - Atomic Mutations: insert, remove, update, move and reorder never apply partially.
  - Copy-on-Write: only the path from the root to the edited element is copied.
  - Selection Safety: removing the selected element (or one of its ancestors) clears the selection.
  - Forgiving Drag and Drop: gestures that cannot be applied are dropped, never fatal.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/lattice"
		"github.com/aretw0/lattice/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		b := lattice.New()

		box, _ := b.AddElement(ctx, domain.TypeContainer, nil)    // c1, selected
		_, _ = b.AddElement(ctx, domain.TypeText, domain.Patch{   // t1, inside c1
			"text": "Hello",
		})
		_ = b.SelectElement(ctx, "")
		_, _ = b.AddElement(ctx, domain.TypeButton, nil)          // b1, at the root

		b.HandleDrag(ctx, domain.Gesture{ActiveID: "b1", OverID: box.ID}) // b1 moves into c1
		fmt.Println(b.Forest().IDs())                              // [c1 t1 b1]
	}

# Front Ends

The same Builder backs the HTTP API (pkg/adapters/http), the MCP server
(pkg/adapters/mcp) and scripted replays (pkg/script). Sessions are isolated and
serialized by pkg/session.
*/
package lattice
