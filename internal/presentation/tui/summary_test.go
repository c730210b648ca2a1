package tui

import (
	"strings"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummary_MultilineCaption(t *testing.T) {
	n := domain.NewNode("t1", domain.TypeText)
	n.Props.Text = "first\nsecond\r\nthird | fourth"
	out := Summary("Doc", &domain.Snapshot{Forest: domain.Forest{n}})

	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "| `t1`") {
			rows = append(rows, line)
		}
	}
	if assert.Len(t, rows, 1) {
		assert.Equal(t, "| `t1` | text | _root_ | first second  third \\| fourth |", rows[0])
	}
}
