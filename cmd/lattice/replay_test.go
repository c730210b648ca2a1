package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replay(t *testing.T, opts replayOptions) (string, error) {
	t.Helper()
	if opts.Path == "" {
		opts.Path = "testdata/page.yaml"
	}
	opts.Profile = termenv.Ascii
	var out bytes.Buffer
	err := runReplay(context.Background(), opts, config.Default(), logging.NewNop(), &out)
	return out.String(), err
}

func TestReplay_Outline(t *testing.T) {
	out, err := replay(t, replayOptions{})
	require.NoError(t, err)
	want := `landing page
└── c1 container "Hero"
    ├── t1 text "Welcome"
    └── b1 button "Sign up" ◀ selected
`
	assert.Equal(t, want, out)
}

func TestReplay_JSON(t *testing.T) {
	out, err := replay(t, replayOptions{Format: "json"})
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []string{"c1", "t1", "b1"}, snap.Forest.IDs())
	assert.Equal(t, "b1", snap.SelectedID)
}

func TestReplay_Mermaid(t *testing.T) {
	out, err := replay(t, replayOptions{Format: "mermaid"})
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "c1 --> b1")
}

func TestReplay_Markdown(t *testing.T) {
	out, err := replay(t, replayOptions{Markdown: true})
	require.NoError(t, err)
	assert.Contains(t, out, "landing page")
	assert.Contains(t, out, "Sign up")
}

func TestReplay_Errors(t *testing.T) {
	_, err := replay(t, replayOptions{Format: "svg"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - op: remove\n    id: ghost\n  - op: add\n    type: text\n"), 0o644))

	out, err := replay(t, replayOptions{Path: path})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, out, "(empty)")

	out, err = replay(t, replayOptions{Path: path, ContinueOnError: true})
	require.NoError(t, err)
	assert.Contains(t, out, "t1 text")
}
