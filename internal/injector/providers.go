package injector

import (
	"fmt"
	"os"

	"github.com/google/wire"

	"github.com/zeusync/provision/internal/config"
	"github.com/zeusync/provision/internal/core/component"
	"github.com/zeusync/provision/internal/core/entity"
	"github.com/zeusync/provision/internal/core/events/bus"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/registry"
	"github.com/zeusync/provision/internal/core/scene"
	"github.com/zeusync/provision/internal/provision"
)

// ProviderSet builds a provision.Engine from a config.Config plus the host's
// scene graph and applier.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideCatalog,
	ProvideLoader,
	ProvideRegistry,
	ProvideSettings,
	provision.NewEngine,
)

func ProvideLogger(cfg *config.Config) (log.Log, error) {
	logger, err := log.NewWithConfig(log.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

func ProvideEventBus(logger log.Log) bus.EventBus {
	b := bus.New()
	if logger.GetLevel() <= log.LevelDebug {
		b.AddObserver(provision.NewLogObserver(logger))
	}
	return b
}

func ProvideCatalog(cfg *config.Config, logger log.Log) *component.Catalog {
	return component.NewCatalog(logger, component.WithWorkers(cfg.Catalog.Workers))
}

func ProvideLoader(cfg *config.Config, logger log.Log) (*entity.Loader, error) {
	loader := entity.NewLoader(logger, cfg.Entities.CorePath, cfg.Entities.ScenesDir)
	if cfg.Entities.Override != "" {
		raw, err := os.ReadFile(cfg.Entities.Override)
		if err != nil {
			return nil, fmt.Errorf("read entity override: %w", err)
		}
		loader.Override = raw
	}
	return loader, nil
}

func ProvideRegistry(
	catalog *component.Catalog,
	host scene.Host,
	applier scene.Applier,
	events bus.EventBus,
	logger log.Log,
) *registry.Registry {
	return registry.New(catalog, host,
		registry.WithLogger(logger),
		registry.WithApplier(applier),
		registry.WithEventBus(events),
	)
}

func ProvideSettings(cfg *config.Config) provision.Settings {
	return provision.Settings{
		Folders: cfg.Catalog.Folders,
		Scene:   cfg.Entities.Scene,
	}
}
