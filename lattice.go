package lattice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ids"
	"github.com/aretw0/lattice/pkg/ports"
)

// Builder is the high-level entry point for the Lattice library.
// It wraps the internal runtime and exposes the operations a visual editor issues:
// add, update, select, drag, plus the lower level remove, move and reorder.
//
// A Builder holds one document and is not safe for concurrent use. Each call runs
// to completion, so mutations apply in the order they are issued.
type Builder struct {
	engine    *runtime.Engine
	ids       ids.Generator
	hooks     domain.LifecycleHooks
	publisher ports.SnapshotPublisher
	policy    runtime.Policy
	logger    *slog.Logger
	SessionID string
}

var _ ports.Builder = (*Builder)(nil)

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithIDGenerator replaces the default per-type counter.
func WithIDGenerator(g ids.Generator) Option {
	return func(b *Builder) {
		b.ids = g
	}
}

// WithPublisher sends every new snapshot to p.
func WithPublisher(p ports.SnapshotPublisher) Option {
	return func(b *Builder) {
		b.publisher = p
	}
}

// WithMaxContainerDepth limits container nesting. Zero (the default) means unlimited;
// one reproduces the stricter "no container inside a container" behaviour.
func WithMaxContainerDepth(depth int) Option {
	return func(b *Builder) {
		b.policy.MaxContainerDepth = depth
	}
}

// WithSessionID labels snapshots, events and log lines.
func WithSessionID(id string) Option {
	return func(b *Builder) {
		b.SessionID = id
	}
}

// New creates a Builder with an empty document and no selection.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.SessionID != "" {
		b.logger = b.logger.With("session", b.SessionID)
	}
	if b.ids == nil {
		b.ids = ids.NewCounter()
	}

	b.engine = runtime.NewEngine(runtime.WithPolicy(b.policy))
	return b
}

// AddElement builds a default element of type t, overlays props, and inserts it into
// the selected container, or at the end of the root when the selection is not a
// container. The new element becomes the selection.
func (b *Builder) AddElement(ctx context.Context, t domain.ElementType, props domain.Patch) (*domain.Node, error) {
	if !t.Valid() {
		err := fmt.Errorf("%w: unknown element type %q", domain.ErrInvalidNode, t)
		b.emitMutation(ctx, domain.OpInsert, "", err)
		return nil, err
	}

	id, err := b.nextID(t)
	if err != nil {
		b.emitMutation(ctx, domain.OpInsert, "", err)
		return nil, err
	}
	node := domain.NewNode(id, t)
	if len(props) > 0 {
		merged, err := node.Props.Apply(t, props)
		if err != nil {
			b.emitMutation(ctx, domain.OpInsert, id, err)
			return nil, err
		}
		node.Props = merged
	}

	parent := ""
	if sel, ok := b.engine.Selected(); ok {
		if typ, _ := b.engine.Store().Type(sel); typ.IsContainer() {
			parent = sel
		}
	}

	err = b.engine.Insert(node, parent)
	if err != nil && parent != "" && errors.Is(err, domain.ErrNestingLimit) {
		// Containers that cannot nest land next to the selection's tree instead.
		b.logger.Debug("Nesting limit reached, adding at root", "id", id, "parent", parent)
		parent = ""
		err = b.engine.Insert(node, parent)
	}
	b.emitMutation(ctx, domain.OpInsert, id, err)
	if err != nil {
		return nil, err
	}

	prev, _ := b.engine.Selected()
	if err := b.engine.Select(id); err != nil {
		return nil, err
	}
	b.emitSelection(ctx, prev)
	b.publish(ctx)

	return b.engine.Store().Get(id)
}

// UpdateElement shallow-merges patch into the props of id.
func (b *Builder) UpdateElement(ctx context.Context, id string, patch domain.Patch) (*domain.Node, error) {
	updated, err := b.engine.Update(id, patch)
	b.emitMutation(ctx, domain.OpUpdate, id, err)
	if err != nil {
		return nil, err
	}
	b.publish(ctx)
	return updated, nil
}

// RemoveElement deletes id and its subtree. If the selection was inside, it is cleared.
func (b *Builder) RemoveElement(ctx context.Context, id string) error {
	prev, _ := b.engine.Selected()
	_, err := b.engine.Remove(id)
	b.emitMutation(ctx, domain.OpRemove, id, err)
	if err != nil {
		return err
	}
	b.emitSelection(ctx, prev)
	b.publish(ctx)
	return nil
}

// MoveElement relocates id under parentID ("" for root), before beforeID when it is
// one of the target's children, otherwise at the end.
func (b *Builder) MoveElement(ctx context.Context, id, parentID, beforeID string) error {
	err := b.engine.Move(id, parentID, beforeID)
	b.emitMutation(ctx, domain.OpMove, id, err)
	if err != nil {
		return err
	}
	b.publish(ctx)
	return nil
}

// ReorderElements array-moves activeID onto the index of overID among the children
// of parentID ("" for root).
func (b *Builder) ReorderElements(ctx context.Context, parentID, activeID, overID string) error {
	err := b.engine.Reorder(parentID, activeID, overID)
	b.emitMutation(ctx, domain.OpReorder, activeID, err)
	if err != nil {
		return err
	}
	b.publish(ctx)
	return nil
}

// SelectElement selects id. An empty id clears the selection.
func (b *Builder) SelectElement(ctx context.Context, id string) error {
	prev, _ := b.engine.Selected()
	if id == "" {
		b.engine.ClearSelection()
	} else if err := b.engine.Select(id); err != nil {
		return err
	}
	if b.emitSelection(ctx, prev) {
		b.publish(ctx)
	}
	return nil
}

// HandleDrag applies a completed drag gesture. Gestures that cannot be applied are
// dropped without touching the document.
func (b *Builder) HandleDrag(ctx context.Context, g domain.Gesture) domain.DragResult {
	plan := b.engine.Drag(g)
	result := plan.Result()

	if b.hooks.OnDrag != nil {
		b.hooks.OnDrag(ctx, &domain.DragEvent{
			EventBase: b.base(domain.EventDrag),
			ActiveID:  g.ActiveID,
			OverID:    g.OverID,
			ParentID:  g.ParentID,
			Outcome:   result.Outcome,
			Reason:    result.Reason,
		})
	}

	switch result.Outcome {
	case domain.DragReparent:
		b.emitMutation(ctx, domain.OpMove, g.ActiveID, nil)
		b.publish(ctx)
	case domain.DragReorder:
		b.emitMutation(ctx, domain.OpReorder, g.ActiveID, nil)
		b.publish(ctx)
	case domain.DragDropped:
		b.logger.Debug("Drag dropped", "active", g.ActiveID, "over", g.OverID, "reason", result.Reason)
	}
	return result
}

// Get returns a copy of element id.
func (b *Builder) Get(id string) (*domain.Node, error) {
	return b.engine.Store().Get(id)
}

// Forest returns a deep copy of the document.
func (b *Builder) Forest() domain.Forest {
	return b.engine.Store().Forest()
}

// Selected returns the selected element ID, if any.
func (b *Builder) Selected() (string, bool) {
	return b.engine.Selected()
}

// Path returns the IDs of the containers enclosing id, outermost first.
func (b *Builder) Path(id string) ([]string, error) {
	return b.engine.Store().Path(id)
}

// Snapshot returns the current document and selection.
func (b *Builder) Snapshot() *domain.Snapshot {
	sel, _ := b.engine.Selected()
	return &domain.Snapshot{
		SessionID:  b.SessionID,
		Version:    b.engine.Store().Version(),
		Forest:     b.engine.Store().Forest(),
		SelectedID: sel,
	}
}

// Reset starts a new session: empty document, no selection, fresh ID sequence.
func (b *Builder) Reset(ctx context.Context) {
	prev, _ := b.engine.Selected()
	b.engine.Reset()
	b.ids.Reset()
	b.emitSelection(ctx, prev)
	b.publish(ctx)
}

// nextID skips IDs already in the forest. A well-behaved generator needs at most
// one attempt per existing element.
func (b *Builder) nextID(t domain.ElementType) (string, error) {
	attempts := b.engine.Store().Len() + 1
	for range attempts {
		id := b.ids.Next(t)
		if !b.engine.Store().Contains(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: generator returned %d ids already in use", domain.ErrDuplicateID, attempts)
}

func (b *Builder) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: b.SessionID,
	}
}

func (b *Builder) emitMutation(ctx context.Context, op, id string, err error) {
	if err != nil {
		b.logger.Info("Mutation rejected", "op", op, "id", id, "error", err)
	} else {
		b.logger.Debug("Mutation applied", "op", op, "id", id, "version", b.engine.Store().Version())
	}
	if b.hooks.OnMutation != nil {
		b.hooks.OnMutation(ctx, &domain.MutationEvent{
			EventBase: b.base(domain.EventMutation),
			Op:        op,
			ElementID: id,
			Err:       err,
			NodeCount: b.engine.Store().Len(),
		})
	}
}

// emitSelection fires OnSelection when the selection differs from prev.
func (b *Builder) emitSelection(ctx context.Context, prev string) bool {
	cur, _ := b.engine.Selected()
	if cur == prev {
		return false
	}
	if b.hooks.OnSelection != nil {
		b.hooks.OnSelection(ctx, &domain.SelectionEvent{
			EventBase:  b.base(domain.EventSelection),
			SelectedID: cur,
			Previous:   prev,
		})
	}
	return true
}

func (b *Builder) publish(ctx context.Context) {
	if b.publisher == nil && b.hooks.OnPublish == nil {
		return
	}
	snap := b.Snapshot()
	if b.hooks.OnPublish != nil {
		b.hooks.OnPublish(ctx, snap)
	}
	if b.publisher == nil {
		return
	}
	if err := b.publisher.Publish(ctx, snap); err != nil {
		b.logger.Warn("Failed to publish snapshot", "version", snap.Version, "error", err)
	}
}
