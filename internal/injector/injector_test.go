package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/provision/internal/config"
	"github.com/zeusync/provision/internal/core/scene/memscene"
)

func TestInitializeEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "components"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "components", "c.json"),
		[]byte(`{"components": {"Hp": {"type": "Health", "max": 3}}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.json"),
		[]byte(`[{"name": "Dummy", "components": ["Hp"], "create_on_start": true}]`), 0o644))

	cfg := config.Default()
	cfg.Catalog.Folders = []string{filepath.Join(dir, "components")}
	cfg.Entities.Override = filepath.Join(dir, "override.json")
	cfg.Logging.Level = "error"

	host := memscene.NewHost()
	engine, err := InitializeEngine(cfg, host, memscene.NewRecorder())
	require.NoError(t, err)

	report, err := engine.Load("")
	require.NoError(t, err)
	assert.True(t, report.Entities.Override)
	assert.Equal(t, 1, report.Spawned)
	assert.Equal(t, 1, host.World().ChildCount())
}

func TestInitializeEngineErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "loud"
	_, err := InitializeEngine(cfg, memscene.NewHost(), memscene.NewRecorder())
	require.Error(t, err)

	cfg = config.Default()
	cfg.Entities.Override = filepath.Join(t.TempDir(), "missing.json")
	_, err = InitializeEngine(cfg, memscene.NewHost(), memscene.NewRecorder())
	require.Error(t, err)
}
