package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	InsertUtilityRate(ctx context.Context, db *gorm.DB, rate *UtilityRate) error
	InsertFixedRate(ctx context.Context, db *gorm.DB, rate *FixedRate) error

	// FindEffectiveUtilityRate returns the qualifying rate with the
	// maximum effective date not after asOf, ties broken by the most
	// recently created row. Returns nil when none qualifies.
	FindEffectiveUtilityRate(ctx context.Context, db *gorm.DB, utility UtilityType, asOf time.Time) (*UtilityRate, error)
	FindEffectiveFixedRate(ctx context.Context, db *gorm.DB, rateType RateType, asOf time.Time) (*FixedRate, error)

	ListUtilityRates(ctx context.Context, db *gorm.DB, utility UtilityType) ([]UtilityRate, error)
	ListFixedRates(ctx context.Context, db *gorm.DB, rateType RateType) ([]FixedRate, error)
}
