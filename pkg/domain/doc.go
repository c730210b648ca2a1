/*
Package domain contains the document model shared by every layer of the builder.

It defines the elements a user places on the canvas and the forest holding them.
This package is kept pure and free of external I/O; mutation lives in internal/runtime,
which treats every Forest it receives as immutable.

# Key Entities

  - Node: A typed element (container, text, image, button, field). Only containers hold children.
  - Forest: The ordered root sequence of elements; the document itself.
  - Props: The common Style sub-record plus the per-type Content payload.
  - Snapshot: What the view layer receives after each successful change.
  - LifecycleHooks: Callbacks for mutations, selection changes, drags and publishes.
*/
package domain
