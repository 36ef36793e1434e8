package rate

import (
	"github.com/predialis/predialis/internal/rate/repository"
	"github.com/predialis/predialis/internal/rate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
