package account

import (
	"github.com/predialis/predialis/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(service.New),
)
