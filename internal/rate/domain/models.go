// Package domain contains persistence models for utility and fixed rates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UtilityType identifies a metered utility.
type UtilityType string

const (
	UtilityGas   UtilityType = "gas"
	UtilityWater UtilityType = "water"
)

func (u UtilityType) Valid() bool {
	switch u {
	case UtilityGas, UtilityWater:
		return true
	}
	return false
}

// RateType identifies a periodic flat condominium fee.
type RateType string

const (
	RateCondo   RateType = "condo"
	RateReserve RateType = "reserve"
)

func (r RateType) Valid() bool {
	switch r {
	case RateCondo, RateReserve:
		return true
	}
	return false
}

// BillingMethod describes how a fixed rate is charged across units.
type BillingMethod string

const (
	BillingMethodFixed    BillingMethod = "fixed"
	BillingMethodProrated BillingMethod = "prorated"
)

func (b BillingMethod) Valid() bool {
	switch b {
	case BillingMethodFixed, BillingMethodProrated:
		return true
	}
	return false
}

// ExpenseType classifies a fixed rate for accounting purposes.
type ExpenseType string

const (
	ExpenseOrdinary      ExpenseType = "ordinary"
	ExpenseExtraordinary ExpenseType = "extraordinary"
)

func (e ExpenseType) Valid() bool {
	switch e {
	case ExpenseOrdinary, ExpenseExtraordinary:
		return true
	}
	return false
}

// UtilityRate is an append-only price per cubic meter for a utility.
// The rate in effect as of a date is the one with the latest effective
// date not after it; ties go to the most recently created row.
type UtilityRate struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	UtilityType       UtilityType  `json:"utility_type" gorm:"type:text;not null;index:ix_utility_rates_type_date,priority:1"`
	RatePerCubicMeter float64      `json:"rate_per_cubic_meter" gorm:"not null"`
	EffectiveDate     time.Time    `json:"effective_date" gorm:"not null;index:ix_utility_rates_type_date,priority:2"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (UtilityRate) TableName() string { return "utility_rates" }

// FixedRate is an append-only flat fee (condo fee or reserve fund).
// Resolution follows the same latest-by-effective-date rule as UtilityRate.
type FixedRate struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	RateType      RateType      `json:"rate_type" gorm:"type:text;not null;index:ix_fixed_rates_type_date,priority:1"`
	BillingMethod BillingMethod `json:"billing_method" gorm:"type:text;not null"`
	ExpenseType   ExpenseType   `json:"expense_type" gorm:"type:text;not null"`
	Amount        float64       `json:"amount" gorm:"not null"`
	EffectiveDate time.Time     `json:"effective_date" gorm:"not null;index:ix_fixed_rates_type_date,priority:2"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (FixedRate) TableName() string { return "fixed_rates" }
