package lattice_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario1_AddContainerToEmptyForest(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	node, err := b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, err)
	assert.Equal(t, "c1", node.ID)

	data, err := json.Marshal(b.Forest())
	require.NoError(t, err)

	var wire []map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Len(t, wire, 1)
	assert.Equal(t, "c1", wire[0]["id"])
	assert.Equal(t, "container", wire[0]["type"])
	assert.Equal(t, []any{}, wire[0]["children"])

	sel, ok := b.Selected()
	assert.True(t, ok)
	assert.Equal(t, "c1", sel)
}

func TestScenario2_AddTextIntoSelectedContainer(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, err)
	require.NoError(t, b.SelectElement(ctx, "c1"))

	_, err = b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)

	f := b.Forest()
	require.Len(t, f, 1)
	require.Len(t, f[0].Children, 1)
	assert.Equal(t, "t1", f[0].Children[0].ID)
	assert.Equal(t, domain.TypeText, f[0].Children[0].Type)
}

func TestAddElement_NonContainerSelectionGoesToRoot(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)
	_, err = b.AddElement(ctx, domain.TypeButton, domain.Patch{"text": "Buy"})
	require.NoError(t, err)

	f := b.Forest()
	assert.Equal(t, []string{"t1", "b1"}, f.IDs())
	assert.Equal(t, "Buy", f[1].Props.Text)
}

func TestAddElement_Errors(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.ElementType("video"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidNode)

	_, err = b.AddElement(ctx, domain.TypeImage, domain.Patch{"text": "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidProps)

	assert.Empty(t, b.Forest())
}

func TestAddElement_IDsAreDistinct(t *testing.T) {
	for _, gen := range []ids.Generator{ids.NewCounter(), ids.UUID{}} {
		b := lattice.New(lattice.WithIDGenerator(gen))
		ctx := context.Background()
		seen := make(map[string]bool)

		for i := 0; i < 50; i++ {
			for _, typ := range domain.ElementTypes {
				n, err := b.AddElement(ctx, typ, nil)
				require.NoError(t, err)
				require.False(t, seen[n.ID], "duplicate id %s", n.ID)
				seen[n.ID] = true
			}
		}
		assert.Equal(t, len(seen), b.Forest().Len())
	}
}

func TestAddElement_SkipsIDsAlreadyInUse(t *testing.T) {
	gen := ids.NewCounter()
	b := lattice.New(lattice.WithIDGenerator(gen))
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)
	gen.Reset()

	n, err := b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)
	assert.Equal(t, "t2", n.ID)
}

// fixedIDs always hands out the same ID.
type fixedIDs string

func (f fixedIDs) Next(domain.ElementType) string { return string(f) }
func (fixedIDs) Reset() {}

func TestAddElement_GeneratorStuckOnUsedID(t *testing.T) {
	b := lattice.New(lattice.WithIDGenerator(fixedIDs("x1")))
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)

	_, err = b.AddElement(ctx, domain.TypeText, nil)
	require.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Equal(t, 1, len(b.Forest()))
}

func TestAddElement_EmptyForeignPayloadIsIgnored(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	// Every element starts from the same {text: ""} default bag, whatever its type.
	c, err := b.AddElement(ctx, domain.TypeContainer, domain.Patch{"text": "", "backgroundColor": "#eeeeee"})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Empty(t, c.Props.Text)
	assert.Equal(t, "#eeeeee", c.Props.BackgroundColor)
	assert.NotContains(t, c.Props.ToMap(), "text")

	_, err = b.AddElement(ctx, domain.TypeContainer, domain.Patch{"text": "Hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidProps)
}

func TestAddElement_StrictNestingFallsBackToRoot(t *testing.T) {
	b := lattice.New(lattice.WithMaxContainerDepth(1))
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, err)
	_, err = b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, err)

	f := b.Forest()
	assert.Len(t, f, 2)
	assert.Empty(t, f[0].Children)
}

func TestScenario4_RemoveAncestorClearsSelection(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, err)
	_, err = b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)

	sel, _ := b.Selected()
	require.Equal(t, "t1", sel)

	require.NoError(t, b.RemoveElement(ctx, "c1"))
	assert.Empty(t, b.Forest())
	_, ok := b.Selected()
	assert.False(t, ok)

	_, err = b.Get("t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateElement(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, err := b.AddElement(ctx, domain.TypeText, domain.Patch{"a": 1, "b": 2})
	require.NoError(t, err)

	n, err := b.UpdateElement(ctx, "t1", domain.Patch{"b": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 3}, n.Props.Extra)

	_, err = b.UpdateElement(ctx, "ghost", domain.Patch{"b": 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSelectElement(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	assert.ErrorIs(t, b.SelectElement(ctx, "ghost"), domain.ErrNotFound)

	_, err := b.AddElement(ctx, domain.TypeField, nil)
	require.NoError(t, err)
	require.NoError(t, b.SelectElement(ctx, ""))
	_, ok := b.Selected()
	assert.False(t, ok)

	require.NoError(t, b.SelectElement(ctx, "f1"))
	sel, _ := b.Selected()
	assert.Equal(t, "f1", sel)
}

func TestHandleDrag(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, _ = b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, b.SelectElement(ctx, ""))
	_, _ = b.AddElement(ctx, domain.TypeText, nil)
	_, _ = b.AddElement(ctx, domain.TypeButton, nil)

	res := b.HandleDrag(ctx, domain.Gesture{ActiveID: "b1", OverID: "t1"})
	assert.Equal(t, domain.DragReorder, res.Outcome)
	assert.Equal(t, []string{"c1", "b1", "t1"}, b.Forest().IDs())

	res = b.HandleDrag(ctx, domain.Gesture{ActiveID: "t1", OverID: "c1"})
	assert.Equal(t, domain.DragReparent, res.Outcome)
	assert.Equal(t, []string{"c1", "t1", "b1"}, b.Forest().IDs())

	version := b.Snapshot().Version
	res = b.HandleDrag(ctx, domain.Gesture{ActiveID: "t1", OverID: "b1"})
	assert.Equal(t, domain.DragDropped, res.Outcome)
	assert.Equal(t, version, b.Snapshot().Version)
}

func TestMoveAndReorder(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, _ = b.AddElement(ctx, domain.TypeContainer, nil)
	_ = b.SelectElement(ctx, "")
	_, _ = b.AddElement(ctx, domain.TypeText, nil)
	_ = b.SelectElement(ctx, "")
	_, _ = b.AddElement(ctx, domain.TypeImage, nil)

	require.NoError(t, b.MoveElement(ctx, "i1", "c1", ""))
	require.NoError(t, b.MoveElement(ctx, "t1", "c1", "i1"))
	f := b.Forest()
	require.Len(t, f, 1)
	assert.Equal(t, []string{"c1", "t1", "i1"}, f.IDs())

	require.NoError(t, b.ReorderElements(ctx, "c1", "t1", "i1"))
	assert.Equal(t, []string{"c1", "i1", "t1"}, b.Forest().IDs())

	assert.ErrorIs(t, b.MoveElement(ctx, "c1", "c1", ""), domain.ErrCycle)
	assert.ErrorIs(t, b.ReorderElements(ctx, "", "t1", "c1"), domain.ErrInvalidTarget)

	path, err := b.Path("t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, path)
}

func TestReset(t *testing.T) {
	b := lattice.New()
	ctx := context.Background()

	_, _ = b.AddElement(ctx, domain.TypeContainer, nil)
	b.Reset(ctx)

	assert.Empty(t, b.Forest())
	_, ok := b.Selected()
	assert.False(t, ok)

	n, err := b.AddElement(ctx, domain.TypeContainer, nil)
	require.NoError(t, err)
	assert.Equal(t, "c1", n.ID)
}

func TestHooksAndPublisher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := memory.NewPublisher(16)
	snaps, err := pub.Subscribe(ctx, "s1")
	require.NoError(t, err)

	var mutations []*domain.MutationEvent
	var selections []*domain.SelectionEvent
	var drags []*domain.DragEvent
	hooks := domain.LifecycleHooks{
		OnMutation:  func(_ context.Context, e *domain.MutationEvent) { mutations = append(mutations, e) },
		OnSelection: func(_ context.Context, e *domain.SelectionEvent) { selections = append(selections, e) },
		OnDrag:      func(_ context.Context, e *domain.DragEvent) { drags = append(drags, e) },
	}

	b := lattice.New(
		lattice.WithSessionID("s1"),
		lattice.WithLifecycleHooks(hooks),
		lattice.WithPublisher(pub),
	)

	_, err = b.AddElement(ctx, domain.TypeText, nil)
	require.NoError(t, err)
	_, err = b.UpdateElement(ctx, "ghost", domain.Patch{"text": "x"})
	require.Error(t, err)
	b.HandleDrag(ctx, domain.Gesture{ActiveID: "t1", OverID: "t1"})

	require.Len(t, mutations, 2)
	assert.Equal(t, domain.OpInsert, mutations[0].Op)
	assert.NoError(t, mutations[0].Err)
	assert.Equal(t, 1, mutations[0].NodeCount)
	assert.ErrorIs(t, mutations[1].Err, domain.ErrNotFound)

	require.Len(t, selections, 1)
	assert.Equal(t, "t1", selections[0].SelectedID)
	assert.Equal(t, "", selections[0].Previous)
	assert.Equal(t, "s1", selections[0].SessionID)

	require.Len(t, drags, 1)
	assert.Equal(t, domain.DragNoop, drags[0].Outcome)

	select {
	case snap := <-snaps:
		assert.Equal(t, "s1", snap.SessionID)
		assert.Equal(t, "t1", snap.SelectedID)
		assert.Equal(t, []string{"t1"}, snap.Forest.IDs())
	default:
		t.Fatal("expected a published snapshot")
	}
}
