package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/predialis/predialis/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*BankAccount, error)
	ListAccounts(ctx context.Context) ([]BankAccount, error)
	GetAccount(ctx context.Context, id string) (*BankAccount, error)
	GetAccountByName(ctx context.Context, name string) (*BankAccount, error)

	// CreateTransaction records a movement. A transaction created
	// directly in completed status is applied to balances before the
	// call returns.
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*Transaction, error)

	// CreateTransactionTx is CreateTransaction inside the caller's
	// database transaction, for callers that must commit a transaction
	// together with their own writes.
	CreateTransactionTx(ctx context.Context, tx *gorm.DB, req CreateTransactionRequest) (*Transaction, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) (*ListTransactionsResponse, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)

	// CompleteTransaction moves a pending transaction to completed and
	// applies its balance effect.
	CompleteTransaction(ctx context.Context, id string) (*Transaction, error)
	CancelTransaction(ctx context.Context, id string) (*Transaction, error)

	// Apply takes the balance effect of a completed transaction exactly
	// once: income credits the account, expense debits it, and a
	// transfer debits the source and credits the destination in the same
	// database transaction, so a mid-failure cannot leave one leg
	// applied. Re-invoking Apply for an already-applied transaction is a
	// no-op.
	Apply(ctx context.Context, transactionID snowflake.ID) error
}

type CreateAccountRequest struct {
	Name           string  `json:"name"`
	InitialBalance float64 `json:"initial_balance"`
}

type CreateTransactionRequest struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	AccountID   string    `json:"account_id"`
	ToAccountID string    `json:"to_account_id"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

type ListTransactionsRequest struct {
	Type      string `form:"type"`
	Status    string `form:"status"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction       `json:"transactions"`
	PageInfo     pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidType         = errors.New("invalid_type")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrInvalidAccount      = errors.New("invalid_account")
	ErrDestinationRequired = errors.New("destination_account_required")
	ErrSameAccountTransfer = errors.New("same_account_transfer")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrDuplicateAccount    = errors.New("duplicate_account")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotCompleted        = errors.New("transaction_not_completed")
	ErrInvalidTransition   = errors.New("invalid_transition")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
