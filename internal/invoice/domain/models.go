// Package domain contains the priced invoice model produced by charge
// composition.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
)

// ChargeKind is the closed set of charge line variants. Composition
// handles each kind exhaustively; there is no untyped item shape.
type ChargeKind string

const (
	ChargeFixed       ChargeKind = "fixed"
	ChargeConsumption ChargeKind = "consumption"
	ChargeAdHoc       ChargeKind = "adhoc"
)

// ChargeLine is one priced item on an invoice.
//
// Consumption lines carry the reading pair and rate they were priced
// from so the document can show the meter math. InitialReading marks a
// first-reading line: the current value became the baseline and nothing
// was charged, which the operator-visible invoice must say explicitly.
type ChargeLine struct {
	Kind            ChargeKind              `json:"kind"`
	Description     string                  `json:"description"`
	Category        string                  `json:"category,omitempty"`
	Utility         *ratedomain.UtilityType `json:"utility,omitempty"`
	PreviousReading *float64                `json:"previous_reading,omitempty"`
	CurrentReading  *float64                `json:"current_reading,omitempty"`
	Consumption     float64                 `json:"consumption,omitempty"`
	Rate            float64                 `json:"rate,omitempty"`
	Amount          float64                 `json:"amount"`
	InitialReading  bool                    `json:"initial_reading,omitempty"`
}

// DiscountType selects how an early-payment discount is computed.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

func (d DiscountType) Valid() bool {
	return d == DiscountFixed || d == DiscountPercentage
}

// Discount is an early-payment reduction. The core only computes the
// discounted total; whether payment actually lands on or before DueDate
// is enforced by the payment collaborator.
type Discount struct {
	Enabled bool         `json:"enabled"`
	DueDate time.Time    `json:"due_date"`
	Type    DiscountType `json:"type"`
	Value   float64      `json:"value"`
}

// PricedInvoice is the composed, itemized charge document for one unit.
// Line amounts are unrounded; currency rounding happens once, on the
// final total.
type PricedInvoice struct {
	Unit           string       `json:"unit"`
	UnitID         snowflake.ID `json:"unit_id"`
	Resident       string       `json:"resident"`
	ReferenceDate  time.Time    `json:"reference_date"`
	DueDate        time.Time    `json:"due_date"`
	Lines          []ChargeLine `json:"lines"`
	Subtotal       float64      `json:"subtotal"`
	Discount       *Discount    `json:"discount,omitempty"`
	DiscountAmount float64      `json:"discount_amount"`
	Total          float64      `json:"total"`

	// Warnings carries the degraded-composition notes the operator must
	// see: unconfigured rates, initial readings, meter rollbacks.
	Warnings []string `json:"warnings,omitempty"`
}
