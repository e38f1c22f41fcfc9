//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/provision/internal/config"
	"github.com/zeusync/provision/internal/core/scene"
	"github.com/zeusync/provision/internal/provision"
)

func InitializeEngine(cfg *config.Config, host scene.Host, applier scene.Applier) (*provision.Engine, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
