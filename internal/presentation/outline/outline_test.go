package outline_test

import (
	"testing"

	"github.com/aretw0/lattice/internal/presentation/outline"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	box := domain.NewNode("c1", domain.TypeContainer)
	box.Children = []*domain.Node{
		domain.NewNode("t1", domain.TypeText),
		domain.NewNode("b1", domain.TypeButton),
	}
	f := domain.Forest{box, domain.NewNode("i1", domain.TypeImage)}

	got, err := outline.String(f, "b1", outline.Options{Title: "s1", Profile: termenv.Ascii})
	require.NoError(t, err)

	want := `s1
├── c1 container
│   ├── t1 text "New text"
│   └── b1 button "Button" ◀ selected
└── i1 image
`
	assert.Equal(t, want, got)
}

func TestString_Empty(t *testing.T) {
	got, err := outline.String(nil, "", outline.Options{Profile: termenv.Ascii})
	require.NoError(t, err)
	assert.Equal(t, "document\n└── (empty)\n", got)
}
