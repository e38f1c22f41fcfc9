package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/provision/internal/core/component"
	"github.com/zeusync/provision/internal/core/entity"
	"github.com/zeusync/provision/internal/core/events/bus"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/registry"
	"github.com/zeusync/provision/internal/core/scene/memscene"
)

type testWorld struct {
	engine *Engine
	host   *memscene.Host
	events bus.EventBus
	root   string
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newWorld(t *testing.T) *testWorld {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "components", "core", "base.json"), `{"components": {
		"Solid": {"type": "RenderLayer", "layer": "world"},
		"PlayerTag": {"type": "Tag", "value": "Player"},
		"Hp": {"type": "Health", "max": 10}
	}}`)
	write(t, filepath.Join(root, "components", "game", "game.json"), `{"components": {
		"BossTag": {"type": "Tag", "value": "Boss"},
		"Hp": {"type": "Health", "max": 50}
	}}`)
	write(t, filepath.Join(root, "components", "game", "zz_broken.json"), `{"components": `)
	write(t, filepath.Join(root, "entities", "core.json"), `{"entities": [
		{"name": "Hero", "components": ["Solid", "PlayerTag", "Hp"], "create_on_start": true}
	]}`)
	write(t, filepath.Join(root, "entities", "scenes", "Level1.json"), `[
		{"name": "Boss", "components": ["BossTag", "Missing"], "create_on_start": true},
		{"name": "Bullet", "object_pooling": true, "pool_initial_size": 2, "pool_max_size": 4, "create_on_start": true},
		{"name": "Spawner"},
		"not an entity"
	]`)

	logger := log.NewNop()
	events := bus.New()
	host := memscene.NewHost()
	catalog := component.NewCatalog(logger)
	loader := entity.NewLoader(logger, filepath.Join(root, "entities", "core.json"), filepath.Join(root, "entities", "scenes"))
	reg := registry.New(catalog, host, registry.WithLogger(logger), registry.WithEventBus(events))
	settings := Settings{Folders: []string{
		filepath.Join(root, "components", "core"),
		filepath.Join(root, "components", "game"),
		filepath.Join(root, "components", "absent"),
	}}

	return &testWorld{
		engine: NewEngine(settings, logger, catalog, loader, reg, events),
		host:   host,
		events: events,
		root:   root,
	}
}

func TestEngineLoad(t *testing.T) {
	w := newWorld(t)
	var loaded bus.LoadEvent
	_, err := w.events.Subscribe(bus.TypeCatalogLoaded, func(e bus.Event) error {
		loaded = e.Data().(bus.LoadEvent)
		return nil
	})
	require.NoError(t, err)

	report, err := w.engine.Load("level1")
	require.NoError(t, err)

	assert.Equal(t, "level1", report.Scene)
	assert.Len(t, report.Catalog.Failed, 1)
	assert.Equal(t, []string{filepath.Join(w.root, "components", "absent")}, report.Catalog.MissingFolders)
	assert.Equal(t, 1, report.Entities.CoreCount)
	assert.Equal(t, 3, report.Entities.SceneCount)
	assert.Equal(t, 4, report.Registered)
	assert.Equal(t, 3, report.Spawned)
	assert.Zero(t, report.SpawnFailed)
	assert.NotZero(t, report.Fingerprint)

	reg := w.engine.Registry()
	assert.Equal(t, 3, reg.Spawned())
	assert.Len(t, reg.Snapshot(), 3)

	hp, ok := w.engine.Catalog().Get("Hp")
	require.True(t, ok)
	assert.Equal(t, 50.0, hp.Payload.(component.Health).Max.Value)

	hero, ok := reg.GetByTag("Player")
	require.True(t, ok)
	assert.Equal(t, "Hero", hero.Node.Name())
	assert.Equal(t, w.host.World(), hero.Node.Parent())

	assert.Equal(t, bus.LoadEvent{Scene: "level1", Components: 4, Entities: 4, Spawned: 3, Fingerprint: report.Fingerprint}, loaded)
	assert.Equal(t, []string{"Boss", "Enemy", "Player"}, w.engine.RequiredTags())
}

func TestEngineReloadReplacesInstances(t *testing.T) {
	w := newWorld(t)
	_, err := w.engine.Load("Level1")
	require.NoError(t, err)
	first, ok := w.engine.Registry().GetByTag("Player")
	require.True(t, ok)
	worldChildren := w.host.World().ChildCount()

	report, err := w.engine.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Level1", report.Scene)
	assert.Equal(t, "Level1", w.engine.Scene())

	second, ok := w.engine.Registry().GetByTag("Player")
	require.True(t, ok)
	assert.NotEqual(t, first.EntityID, second.EntityID)
	assert.True(t, first.Node.(*memscene.Node).Destroyed())
	assert.Equal(t, worldChildren, w.host.World().ChildCount())
	assert.Equal(t, 3, w.engine.Registry().Spawned())
}

func TestEngineTagSinkAndUnknownScene(t *testing.T) {
	w := newWorld(t)
	var got []string
	w.engine.SetTagSink(func(tags []string) { got = tags })

	report, err := w.engine.Load("Nowhere")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Registered)
	assert.Equal(t, []string{"Enemy", "Player"}, got)
}

func TestEngineLoadCancelled(t *testing.T) {
	w := newWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.engine.LoadContext(ctx, "Level1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, w.engine.Registry().Len())
}

func TestLogObserver(t *testing.T) {
	events := bus.New()
	events.AddObserver(NewLogObserver(log.NewNop()))
	_, err := events.Subscribe("x", func(bus.Event) error { return assert.AnError })
	require.NoError(t, err)
	require.ErrorIs(t, events.Publish(bus.NewEvent("x", "test", nil)), assert.AnError)
	assert.Equal(t, uint64(1), events.GetMetrics().Errors)
}
