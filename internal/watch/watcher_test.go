package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/provision/internal/core/observability/log"
)

func writeJSON(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "a.json"), `{"a": 1}`)
	writeJSON(t, filepath.Join(dir, "notes.txt"), "ignored")

	first, err := Digest([]string{dir, filepath.Join(dir, "missing")})
	require.NoError(t, err)

	writeJSON(t, filepath.Join(dir, "notes.txt"), "still ignored")
	same, err := Digest([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, first, same)

	writeJSON(t, filepath.Join(dir, "a.json"), `{"a": 2}`)
	changed, err := Digest([]string{dir})
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestFlushSkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	writeJSON(t, path, `{"a": 1}`)

	w, err := New(log.NewNop(), []string{dir, filepath.Join(dir, "missing")}, time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, []string{dir}, w.Dirs())

	w.pending[path] = struct{}{}
	_, ok := w.flush()
	assert.False(t, ok, "same bytes must not trigger a reload")
	assert.Empty(t, w.pending)

	writeJSON(t, path, `{"a": 2}`)
	w.pending[path] = struct{}{}
	change, ok := w.flush()
	require.True(t, ok)
	assert.Equal(t, []string{path}, change.Paths)

	w.pending[path] = struct{}{}
	_, ok = w.flush()
	assert.False(t, ok)
}

func TestEmitCoalesces(t *testing.T) {
	w, err := New(log.NewNop(), nil, 0)
	require.NoError(t, err)
	defer w.Close()

	w.emit(Change{Paths: []string{"a.json"}, Digest: 1})
	w.emit(Change{Paths: []string{"b.json", "a.json"}, Digest: 2})

	got := <-w.Reloads()
	assert.Equal(t, uint64(2), got.Digest)
	assert.Equal(t, []string{"a.json", "b.json"}, got.Paths)
}

func TestRunDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entities.json")
	writeJSON(t, path, `[]`)

	w, err := New(log.NewNop(), []string{dir}, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeJSON(t, filepath.Join(dir, "readme.txt"), "not json")
	writeJSON(t, path, `[{"name": "Hero"}]`)

	want, err := Digest([]string{dir})
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for received := false; !received; {
		select {
		case change := <-w.Reloads():
			assert.Equal(t, []string{path}, change.Paths)
			received = change.Digest == want
		case <-deadline:
			t.Fatal("no reload delivered")
		}
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	for range w.Reloads() {
	}
	assert.NoError(t, w.Close())
}
