package runtime

import (
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/require"
)

func container(id string, children ...*domain.Node) *domain.Node {
	n := domain.NewNode(id, domain.TypeContainer)
	n.Children = append(n.Children, children...)
	return n
}

func text(id string) *domain.Node {
	return domain.NewNode(id, domain.TypeText)
}

func forest(nodes ...*domain.Node) domain.Forest {
	return domain.Forest(nodes)
}

// ids renders a forest as a compact nested list for assertions, e.g. "a[b c] d".
func ids(nodes []*domain.Node) string {
	out := ""
	for i, n := range nodes {
		if i > 0 {
			out += " "
		}
		out += n.ID
		if n.Type.IsContainer() {
			out += "[" + ids(n.Children) + "]"
		}
	}
	return out
}

func mustInsert(t *testing.T, f domain.Forest, n *domain.Node, parent string) domain.Forest {
	t.Helper()
	next, err := Insert(f, n, parent, Policy{})
	require.NoError(t, err)
	return next
}
