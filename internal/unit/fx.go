package unit

import (
	"github.com/predialis/predialis/internal/unit/repository"
	"github.com/predialis/predialis/internal/unit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("unit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
