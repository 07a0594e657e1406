//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/banyantree/banyan/internal/core/blueprint"
	"github.com/banyantree/banyan/internal/core/observability/log"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

func ProvideNodeRegistry() *blueprint.Registry {
	wire.Build(blueprint.NewRegistry)
	return blueprint.NewRegistry()
}
