// Package domain contains persistence models for billing records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingStatus is the lifecycle state of an issued charge.
//
// pending -> paid | overdue | cancelled
// overdue -> paid | cancelled
// paid and cancelled are terminal.
type BillingStatus string

const (
	BillingPending   BillingStatus = "pending"
	BillingPaid      BillingStatus = "paid"
	BillingOverdue   BillingStatus = "overdue"
	BillingCancelled BillingStatus = "cancelled"
)

func (s BillingStatus) Valid() bool {
	switch s {
	case BillingPending, BillingPaid, BillingOverdue, BillingCancelled:
		return true
	}
	return false
}

func (s BillingStatus) Terminal() bool {
	return s == BillingPaid || s == BillingCancelled
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s BillingStatus) CanTransitionTo(next BillingStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case BillingPending:
		return next == BillingPaid || next == BillingOverdue || next == BillingCancelled
	case BillingOverdue:
		return next == BillingPaid || next == BillingCancelled
	}
	return false
}

// Billing is a single issued charge owed by a unit. Amount is frozen at
// creation: corrections are a new Billing, never an edit that would
// retroactively change past ledger state.
type Billing struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Unit        string            `json:"unit" gorm:"type:text;not null"`
	UnitID      *snowflake.ID     `json:"unit_id" gorm:"index"`
	Resident    string            `json:"resident" gorm:"type:text;not null"`
	Description string            `json:"description" gorm:"type:text"`
	Amount      float64           `json:"amount" gorm:"not null"`
	DueDate     time.Time         `json:"due_date" gorm:"not null;index"`
	Status      BillingStatus     `json:"status" gorm:"type:text;not null;default:'pending';index"`
	IsPrinted   bool              `json:"is_printed" gorm:"not null;default:false"`
	IsSent      bool              `json:"is_sent" gorm:"not null;default:false"`
	Metadata    datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Billing) TableName() string { return "billings" }
