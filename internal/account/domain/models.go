// Package domain contains persistence models for bank accounts and
// financial transactions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TransactionType represents the financial effect of a transaction.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction. Only
// completed transactions affect account balances.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionCancelled:
		return true
	}
	return false
}

// BankAccount holds a balance with a derivable invariant: balance always
// equals initial_balance plus the signed sum of applied completed
// transactions referencing the account. Every writer goes through the
// balance updater; nothing assigns Balance directly.
type BankAccount struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	Name           string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_bank_accounts_name"`
	Balance        float64      `json:"balance" gorm:"not null;default:0"`
	InitialBalance float64      `json:"initial_balance" gorm:"not null;default:0"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BankAccount) TableName() string { return "bank_accounts" }

// Transaction is a financial movement. AppliedAt marks that its balance
// effect has been taken, which makes Apply idempotent under retries.
type Transaction struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Amount      float64           `json:"amount" gorm:"not null"`
	Type        TransactionType   `json:"type" gorm:"type:text;not null"`
	Category    string            `json:"category" gorm:"type:text"`
	AccountID   snowflake.ID      `json:"account_id" gorm:"not null;index"`
	ToAccountID *snowflake.ID     `json:"to_account_id" gorm:"index"`
	Date        time.Time         `json:"date" gorm:"not null"`
	Status      TransactionStatus `json:"status" gorm:"type:text;not null;default:'pending'"`
	AppliedAt   *time.Time        `json:"applied_at"`
	Metadata    datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }
