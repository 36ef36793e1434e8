package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// Create validates and persists a new billing in pending status.
	Create(ctx context.Context, req CreateRequest) (*Billing, error)

	// CreateTx is Create inside a caller-owned database transaction; the
	// invoice issuer uses it so a billing and its meter readings land
	// atomically.
	CreateTx(ctx context.Context, tx *gorm.DB, req CreateRequest) (*Billing, error)

	List(ctx context.Context, req ListRequest) ([]Billing, error)
	GetByID(ctx context.Context, id string) (*Billing, error)

	// UpdateStatus enforces the billing state machine. Moving to paid
	// records a completed income transaction against the operating
	// account and applies it to the balance.
	UpdateStatus(ctx context.Context, id string, status BillingStatus) (*Billing, error)

	// Update patches non-status fields. Permitted only while the billing
	// is pending; amount is immutable once created.
	Update(ctx context.Context, req UpdateRequest) (*Billing, error)
}

type CreateRequest struct {
	Unit        string        `json:"unit"`
	UnitID      *snowflake.ID `json:"unit_id"`
	Resident    string        `json:"resident"`
	Description string        `json:"description"`
	Amount      float64       `json:"amount"`
	DueDate     time.Time     `json:"due_date"`
}

type ListRequest struct {
	Status string `form:"status"`
}

type UpdateRequest struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Resident    *string `json:"resident,omitempty"`
	IsPrinted   *bool   `json:"is_printed,omitempty"`
	IsSent      *bool   `json:"is_sent,omitempty"`
}

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrMissingDueDate    = errors.New("missing_due_date")
	ErrMissingUnit       = errors.New("missing_unit")
	ErrMissingResident   = errors.New("missing_resident")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrImmutableRecord   = errors.New("immutable_record")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
