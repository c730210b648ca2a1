package runtime

import (
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection(t *testing.T) {
	store := NewStore()
	store.replace(forest(container("a", text("b"))))

	var sel Selection
	_, ok := sel.Selected()
	assert.False(t, ok)

	assert.ErrorIs(t, sel.Select(store, "ghost"), domain.ErrNotFound)
	_, ok = sel.Selected()
	assert.False(t, ok, "failed select must not change the selection")

	require.NoError(t, sel.Select(store, "b"))
	id, ok := sel.Selected()
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	assert.False(t, sel.Reconcile(store))

	store.replace(forest(text("z")))
	assert.True(t, sel.Reconcile(store))
	_, ok = sel.Selected()
	assert.False(t, ok)

	require.NoError(t, sel.Select(store, "z"))
	sel.Clear()
	_, ok = sel.Selected()
	assert.False(t, ok)
}
