package component

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/pkg/encoding/jsonvalue"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLaterFolderWins(t *testing.T) {
	root := t.TempDir()
	core := filepath.Join(root, "core")
	game := filepath.Join(root, "game")
	writeFile(t, core, "base.json", `{"components": {
		"Solid": {"type": "RenderLayer", "layer": "world"},
		"Hp": {"type": "Health", "max": 10}
	}}`)
	writeFile(t, game, "override.json", `{"components": {"Solid": {"type": "RenderLayer", "layer": "ui", "order": 3}}}`)

	c := NewCatalog(log.NewNop())
	report := c.Load([]string{core, game})

	require.NoError(t, report.Err())
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 3, report.Merged)
	assert.Equal(t, 1, report.Overridden)
	assert.Equal(t, []string{"Hp", "Solid"}, c.IDs())

	solid, ok := c.Get("Solid")
	require.True(t, ok)
	layer, ok := solid.Payload.(RenderLayer)
	require.True(t, ok)
	assert.True(t, layer.IsUI())
	assert.Equal(t, Some(3), layer.Order)
	assert.Equal(t, filepath.Join(game, "override.json"), solid.Source)
}

func TestLoadLexicalFileOrderWithinFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"components": {"X": {"type": "Tag", "value": "second"}}}`)
	writeFile(t, dir, "a.json", `{"components": {"X": {"type": "Tag", "value": "first"}}}`)

	c := NewCatalog(log.NewNop(), WithWorkers(1))
	c.Load([]string{dir})

	tag, ok := c.TagOf("X")
	require.True(t, ok)
	assert.Equal(t, "second", tag)
}

func TestLoadSkipsBadFilesAndMissingFolders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"components": {"A": {"type": "AI", "behavior": "patrol"}, "": {"type": "Tag"}, "N": 5}}`)
	bad := writeFile(t, dir, "bad.json", `{"components": {`)
	writeFile(t, dir, "notes.txt", `not json`)
	writeFile(t, dir, "list.json", `[1, 2]`)
	writeFile(t, dir, "other.json", `{"entities": []}`)
	missing := filepath.Join(dir, "nope")

	c := NewCatalog(log.NewNop())
	report := c.Load([]string{missing, dir})

	assert.Equal(t, []string{missing}, report.MissingFolders)
	assert.Equal(t, 4, report.Files)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, bad, report.Failed[0].Path)
	assert.True(t, errors.Is(report.Err(), jsonvalue.ErrSyntax))

	assert.Equal(t, []string{"A"}, c.IDs())
	_, ok := c.Get("")
	assert.False(t, ok)
}

func TestLoadClearsPreviousState(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "a.json", `{"components": {"Old": {"type": "Tag", "value": "x"}}}`)
	writeFile(t, second, "a.json", `{"components": {"New": {"type": "Tag", "value": "y"}}}`)

	c := NewCatalog(log.NewNop())
	c.Load([]string{first})
	fp := c.Fingerprint()
	assert.NotZero(t, fp)

	c.Load([]string{second})
	_, ok := c.Get("Old")
	assert.False(t, ok)
	assert.NotEqual(t, fp, c.Fingerprint())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, err := c.MustGet("New")
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestFingerprintStableForSameBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"components": {}}`)

	c := NewCatalog(log.NewNop())
	c.Load([]string{dir})
	fp := c.Fingerprint()
	c.Load([]string{dir})
	assert.Equal(t, fp, c.Fingerprint())
}
