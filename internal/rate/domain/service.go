package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUtilityRate(ctx context.Context, req CreateUtilityRateRequest) (*UtilityRate, error)
	CreateFixedRate(ctx context.Context, req CreateFixedRateRequest) (*FixedRate, error)

	// CurrentRate returns the utility rate in effect as of the given date,
	// or nil when no qualifying rate exists. Absence is not an error: it
	// means the rate has not been configured yet.
	CurrentRate(ctx context.Context, utility UtilityType, asOf time.Time) (*UtilityRate, error)

	// CurrentFixedRate is the FixedRate counterpart of CurrentRate.
	CurrentFixedRate(ctx context.Context, rateType RateType, asOf time.Time) (*FixedRate, error)

	ListUtilityRates(ctx context.Context, utility UtilityType) ([]UtilityRate, error)
	ListFixedRates(ctx context.Context, rateType RateType) ([]FixedRate, error)
}

type CreateUtilityRateRequest struct {
	UtilityType   string    `json:"utility_type"`
	Rate          float64   `json:"rate_per_cubic_meter"`
	EffectiveDate time.Time `json:"effective_date"`
}

type CreateFixedRateRequest struct {
	RateType      string    `json:"rate_type"`
	BillingMethod string    `json:"billing_method"`
	ExpenseType   string    `json:"expense_type"`
	Amount        float64   `json:"amount"`
	EffectiveDate time.Time `json:"effective_date"`
}

var (
	ErrInvalidUtilityType   = errors.New("invalid_utility_type")
	ErrInvalidRateType      = errors.New("invalid_rate_type")
	ErrInvalidBillingMethod = errors.New("invalid_billing_method")
	ErrInvalidExpenseType   = errors.New("invalid_expense_type")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidEffectiveDate = errors.New("invalid_effective_date")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
