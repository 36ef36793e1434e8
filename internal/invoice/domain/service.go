package domain

import (
	"context"
	"errors"
	"time"

	billingdomain "github.com/predialis/predialis/internal/billing/domain"
)

type Service interface {
	// Compose assembles and prices a unit's charge set. It is read-only:
	// nothing is recorded or persisted. Missing rates degrade to omitted
	// lines with warnings; a total of zero or less is ErrInvalidInvoice.
	Compose(ctx context.Context, req ComposeRequest) (*PricedInvoice, error)

	// Issue composes and persists: the billing and the current meter
	// readings land in one database transaction, or not at all.
	Issue(ctx context.Context, req ComposeRequest) (*IssueResult, error)
}

type ComposeRequest struct {
	UnitID        string               `json:"unit_id"`
	ReferenceDate time.Time            `json:"reference_date"`
	DueDate       time.Time            `json:"due_date"`
	FixedCharges  []FixedChargeInput   `json:"fixed_charges"`
	Utilities     []UtilityChargeInput `json:"utilities"`
	AdHocItems    []AdHocItemInput     `json:"ad_hoc_items"`
	Discount      *Discount            `json:"discount,omitempty"`
}

type FixedChargeInput struct {
	RateType string `json:"rate_type"`
}

type UtilityChargeInput struct {
	UtilityType    string    `json:"utility_type"`
	CurrentReading float64   `json:"current_reading"`
	ReadingDate    time.Time `json:"reading_date"`
}

// AdHocItemInput is an arbitrary extra charge. UnitScope is either "all"
// or a specific unit id; items scoped to other units are skipped.
type AdHocItemInput struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Value       float64 `json:"value"`
	UnitScope   string  `json:"unit_scope"`
}

type IssueResult struct {
	Invoice *PricedInvoice         `json:"invoice"`
	Billing *billingdomain.Billing `json:"billing"`
}

var (
	ErrInvalidInvoice     = errors.New("invalid_invoice")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrUnitNotFound       = errors.New("unit_not_found")
	ErrInvalidUtilityType = errors.New("invalid_utility_type")
	ErrInvalidRateType    = errors.New("invalid_rate_type")
	ErrInvalidDiscount    = errors.New("invalid_discount")
	ErrInvalidReading     = errors.New("invalid_reading")
)
