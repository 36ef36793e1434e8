package migration

import (
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	"github.com/predialis/predialis/internal/config"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"github.com/predialis/predialis/internal/seed"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql installs take the schema from the models.
			if err := conn.AutoMigrate(
				&unitdomain.Unit{},
				&ratedomain.UtilityRate{},
				&ratedomain.FixedRate{},
				&meteringdomain.MeterReading{},
				&billingdomain.Billing{},
				&accountdomain.BankAccount{},
				&accountdomain.Transaction{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureOperatingAccount(conn, cfg.OperatingAccountName)
	}),
)
