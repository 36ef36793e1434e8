package repository

import (
	"context"
	"time"

	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ratedomain.Repository {
	return &repo{}
}

func (r *repo) InsertUtilityRate(ctx context.Context, db *gorm.DB, rate *ratedomain.UtilityRate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO utility_rates (id, utility_type, rate_per_cubic_meter, effective_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.UtilityType,
		rate.RatePerCubicMeter,
		rate.EffectiveDate,
		rate.CreatedAt,
		rate.UpdatedAt,
	).Error
}

func (r *repo) InsertFixedRate(ctx context.Context, db *gorm.DB, rate *ratedomain.FixedRate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fixed_rates (id, rate_type, billing_method, expense_type, amount, effective_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.RateType,
		rate.BillingMethod,
		rate.ExpenseType,
		rate.Amount,
		rate.EffectiveDate,
		rate.CreatedAt,
		rate.UpdatedAt,
	).Error
}

func (r *repo) FindEffectiveUtilityRate(ctx context.Context, db *gorm.DB, utility ratedomain.UtilityType, asOf time.Time) (*ratedomain.UtilityRate, error) {
	var rate ratedomain.UtilityRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, utility_type, rate_per_cubic_meter, effective_date, created_at, updated_at
		 FROM utility_rates
		 WHERE utility_type = ? AND effective_date <= ?
		 ORDER BY effective_date DESC, created_at DESC, id DESC
		 LIMIT 1`,
		utility,
		asOf,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) FindEffectiveFixedRate(ctx context.Context, db *gorm.DB, rateType ratedomain.RateType, asOf time.Time) (*ratedomain.FixedRate, error) {
	var rate ratedomain.FixedRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, rate_type, billing_method, expense_type, amount, effective_date, created_at, updated_at
		 FROM fixed_rates
		 WHERE rate_type = ? AND effective_date <= ?
		 ORDER BY effective_date DESC, created_at DESC, id DESC
		 LIMIT 1`,
		rateType,
		asOf,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) ListUtilityRates(ctx context.Context, db *gorm.DB, utility ratedomain.UtilityType) ([]ratedomain.UtilityRate, error) {
	var rates []ratedomain.UtilityRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, utility_type, rate_per_cubic_meter, effective_date, created_at, updated_at
		 FROM utility_rates
		 WHERE utility_type = ?
		 ORDER BY effective_date DESC, created_at DESC`,
		utility,
	).Scan(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repo) ListFixedRates(ctx context.Context, db *gorm.DB, rateType ratedomain.RateType) ([]ratedomain.FixedRate, error) {
	var rates []ratedomain.FixedRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, rate_type, billing_method, expense_type, amount, effective_date, created_at, updated_at
		 FROM fixed_rates
		 WHERE rate_type = ?
		 ORDER BY effective_date DESC, created_at DESC`,
		rateType,
	).Scan(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}
