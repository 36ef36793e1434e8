package metering

import (
	"github.com/predialis/predialis/internal/metering/repository"
	"github.com/predialis/predialis/internal/metering/service"
	"go.uber.org/fx"
)

var Module = fx.Module("metering.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
