//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/questforge/questforge/internal/core/engine"
	"github.com/questforge/questforge/internal/core/observability/log"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelInfo)
}

func ProvideEngine(cfg engine.Config) *engine.Engine {
	wire.Build(engine.New)
	return engine.New(cfg)
}
