package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	obsmetrics "github.com/predialis/predialis/internal/observability/metrics"
	"github.com/predialis/predialis/pkg/db"
	"github.com/predialis/predialis/pkg/db/option"
	"github.com/predialis/predialis/pkg/db/pagination"
	"github.com/predialis/predialis/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	obsMetrics *obsmetrics.Metrics

	accounts     repository.Repository[accountdomain.BankAccount]
	transactions repository.Repository[accountdomain.Transaction]
}

func New(p Params) accountdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("account.service"),
		genID:      p.GenID,
		obsMetrics: p.ObsMetrics,

		accounts:     repository.ProvideStore[accountdomain.BankAccount](p.DB),
		transactions: repository.ProvideStore[accountdomain.Transaction](p.DB),
	}
}

func (s *Service) CreateAccount(ctx context.Context, req accountdomain.CreateAccountRequest) (*accountdomain.BankAccount, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, accountdomain.ErrInvalidName
	}
	if math.IsNaN(req.InitialBalance) {
		return nil, accountdomain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	account := &accountdomain.BankAccount{
		ID:             s.genID.Generate(),
		Name:           name,
		Balance:        req.InitialBalance,
		InitialBalance: req.InitialBalance,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, accountdomain.ErrDuplicateAccount
		}
		return nil, err
	}

	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]accountdomain.BankAccount, error) {
	rows, err := s.accounts.Find(ctx, &accountdomain.BankAccount{}, option.WithOrder("name ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]accountdomain.BankAccount, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (*accountdomain.BankAccount, error) {
	accountID, err := accountdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, accountdomain.ErrInvalidID
	}

	account, err := s.accounts.FindOne(ctx, &accountdomain.BankAccount{ID: accountID})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func (s *Service) GetAccountByName(ctx context.Context, name string) (*accountdomain.BankAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, accountdomain.ErrInvalidName
	}

	account, err := s.accounts.FindOne(ctx, &accountdomain.BankAccount{Name: name})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func (s *Service) CreateTransaction(ctx context.Context, req accountdomain.CreateTransactionRequest) (*accountdomain.Transaction, error) {
	transaction, err := s.buildTransaction(req)
	if err != nil {
		return nil, err
	}

	if transaction.Status != accountdomain.TransactionCompleted {
		if err := s.transactions.Create(ctx, transaction); err != nil {
			return nil, err
		}
		return transaction, nil
	}

	// A transaction born completed is inserted and applied in one database
	// transaction, so a failed application leaves no record behind.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, txErr := s.createTransactionTx(ctx, tx, transaction)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if s.obsMetrics != nil {
		s.obsMetrics.RecordTransactionApplied()
	}

	return s.loadTransaction(ctx, transaction.ID)
}

// CreateTransactionTx inserts and, for completed status, applies a
// transaction inside the caller's database transaction, so a domain event
// and its financial record commit or roll back together.
func (s *Service) CreateTransactionTx(ctx context.Context, tx *gorm.DB, req accountdomain.CreateTransactionRequest) (*accountdomain.Transaction, error) {
	transaction, err := s.buildTransaction(req)
	if err != nil {
		return nil, err
	}
	return s.createTransactionTx(ctx, tx, transaction)
}

func (s *Service) createTransactionTx(ctx context.Context, tx *gorm.DB, transaction *accountdomain.Transaction) (*accountdomain.Transaction, error) {
	if err := s.transactions.WithTrx(tx).Create(ctx, transaction); err != nil {
		return nil, err
	}
	if transaction.Status == accountdomain.TransactionCompleted {
		if _, err := s.applyTx(ctx, tx, transaction.ID); err != nil {
			return nil, err
		}
	}
	return s.findTransactionTx(ctx, tx, transaction.ID)
}

func (s *Service) buildTransaction(req accountdomain.CreateTransactionRequest) (*accountdomain.Transaction, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, accountdomain.ErrInvalidDescription
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) {
		return nil, accountdomain.ErrInvalidAmount
	}

	txType := accountdomain.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, accountdomain.ErrInvalidType
	}

	status := accountdomain.TransactionPending
	if req.Status != "" {
		status = accountdomain.TransactionStatus(req.Status)
		if !status.Valid() {
			return nil, accountdomain.ErrInvalidStatus
		}
	}

	accountID, err := accountdomain.ParseID(strings.TrimSpace(req.AccountID))
	if err != nil || accountID == 0 {
		return nil, accountdomain.ErrInvalidAccount
	}

	var toAccountID *snowflake.ID
	if txType == accountdomain.TransactionTransfer {
		parsed, err := accountdomain.ParseID(strings.TrimSpace(req.ToAccountID))
		if err != nil || parsed == 0 {
			return nil, accountdomain.ErrDestinationRequired
		}
		if parsed == accountID {
			return nil, accountdomain.ErrSameAccountTransfer
		}
		toAccountID = &parsed
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now().UTC()
	return &accountdomain.Transaction{
		ID:          s.genID.Generate(),
		Description: description,
		Amount:      req.Amount,
		Type:        txType,
		Category:    strings.TrimSpace(req.Category),
		AccountID:   accountID,
		ToAccountID: toAccountID,
		Date:        date.UTC(),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) ListTransactions(ctx context.Context, req accountdomain.ListTransactionsRequest) (*accountdomain.ListTransactionsResponse, error) {
	opts := make([]option.QueryOption, 0, 4)
	if req.Type != "" {
		txType := accountdomain.TransactionType(req.Type)
		if !txType.Valid() {
			return nil, accountdomain.ErrInvalidType
		}
		opts = append(opts, option.WithCondition("type = ?", txType))
	}
	if req.Status != "" {
		status := accountdomain.TransactionStatus(req.Status)
		if !status.Valid() {
			return nil, accountdomain.ErrInvalidStatus
		}
		opts = append(opts, option.WithCondition("status = ?", status))
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	opts = append(opts,
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  pageSize,
		}),
		option.WithOrder("id DESC"),
	)

	rows, err := s.transactions.Find(ctx, &accountdomain.Transaction{}, opts...)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(transaction *accountdomain.Transaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        transaction.ID.String(),
			CreatedAt: transaction.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(rows) > pageSize {
		rows = rows[:pageSize]
	}

	out := make([]accountdomain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return &accountdomain.ListTransactionsResponse{
		Transactions: out,
		PageInfo:     *pageInfo,
	}, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*accountdomain.Transaction, error) {
	transactionID, err := accountdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, accountdomain.ErrInvalidID
	}
	return s.loadTransaction(ctx, transactionID)
}

func (s *Service) CompleteTransaction(ctx context.Context, id string) (*accountdomain.Transaction, error) {
	transactionID, err := accountdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, accountdomain.ErrInvalidID
	}

	transaction, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Status != accountdomain.TransactionPending {
		return nil, accountdomain.ErrInvalidTransition
	}

	// Status flip and balance application commit together: a failed leg
	// rolls the transaction back to pending instead of stranding it
	// completed with no balance effect.
	applied := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Exec(
			`UPDATE transactions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			accountdomain.TransactionCompleted,
			now,
			transactionID,
			accountdomain.TransactionPending,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return accountdomain.ErrInvalidTransition
		}

		var applyErr error
		applied, applyErr = s.applyTx(ctx, tx, transactionID)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	if applied && s.obsMetrics != nil {
		s.obsMetrics.RecordTransactionApplied()
	}

	return s.loadTransaction(ctx, transactionID)
}

func (s *Service) CancelTransaction(ctx context.Context, id string) (*accountdomain.Transaction, error) {
	transactionID, err := accountdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, accountdomain.ErrInvalidID
	}

	transaction, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Status != accountdomain.TransactionPending {
		return nil, accountdomain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Exec(
		`UPDATE transactions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		accountdomain.TransactionCancelled,
		now,
		transactionID,
		accountdomain.TransactionPending,
	).Error
	if err != nil {
		return nil, err
	}

	transaction.Status = accountdomain.TransactionCancelled
	transaction.UpdatedAt = now
	return transaction, nil
}

// Apply claims the transaction by stamping applied_at before touching any
// balance. The claim and both balance legs run in one database
// transaction: a failed leg rolls everything back, including the claim,
// and a second Apply for an already-claimed transaction affects zero rows
// and returns without mutating anything.
func (s *Service) Apply(ctx context.Context, transactionID snowflake.ID) error {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applyErr error
		applied, applyErr = s.applyTx(ctx, tx, transactionID)
		return applyErr
	})
	if err != nil {
		return err
	}
	if applied && s.obsMetrics != nil {
		s.obsMetrics.RecordTransactionApplied()
	}
	return nil
}

func (s *Service) applyTx(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID) (bool, error) {
	now := time.Now().UTC()

	claim := tx.Exec(
		`UPDATE transactions SET applied_at = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND applied_at IS NULL`,
		now,
		now,
		transactionID,
		accountdomain.TransactionCompleted,
	)
	if claim.Error != nil {
		return false, claim.Error
	}
	if claim.RowsAffected == 0 {
		transaction, err := s.findTransactionTx(ctx, tx, transactionID)
		if err != nil {
			return false, err
		}
		if transaction == nil {
			return false, accountdomain.ErrNotFound
		}
		if transaction.Status != accountdomain.TransactionCompleted {
			return false, accountdomain.ErrNotCompleted
		}
		// Already applied; idempotent no-op.
		s.log.Debug("transaction already applied",
			zap.String("transaction_id", transactionID.String()),
		)
		return false, nil
	}

	transaction, err := s.findTransactionTx(ctx, tx, transactionID)
	if err != nil {
		return false, err
	}
	if transaction == nil {
		return false, accountdomain.ErrNotFound
	}

	switch transaction.Type {
	case accountdomain.TransactionIncome:
		if err := s.adjustBalance(ctx, tx, transaction.AccountID, transaction.Amount, now); err != nil {
			return false, err
		}
	case accountdomain.TransactionExpense:
		if err := s.adjustBalance(ctx, tx, transaction.AccountID, -transaction.Amount, now); err != nil {
			return false, err
		}
	case accountdomain.TransactionTransfer:
		if transaction.ToAccountID == nil {
			return false, accountdomain.ErrDestinationRequired
		}
		// Both legs or neither: an unresolvable account rolls the
		// whole application back, claim included.
		if err := s.adjustBalance(ctx, tx, transaction.AccountID, -transaction.Amount, now); err != nil {
			return false, err
		}
		if err := s.adjustBalance(ctx, tx, *transaction.ToAccountID, transaction.Amount, now); err != nil {
			return false, err
		}
	default:
		return false, accountdomain.ErrInvalidType
	}

	s.log.Info("transaction applied",
		zap.String("transaction_id", transactionID.String()),
		zap.String("type", string(transaction.Type)),
		zap.Float64("amount", transaction.Amount),
	)
	return true, nil
}

func (s *Service) adjustBalance(ctx context.Context, tx *gorm.DB, accountID snowflake.ID, delta float64, now time.Time) error {
	res := tx.WithContext(ctx).Exec(
		`UPDATE bank_accounts SET balance = balance + ?, updated_at = ? WHERE id = ?`,
		delta,
		now,
		accountID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return accountdomain.ErrAccountNotFound
	}
	return nil
}

func (s *Service) loadTransaction(ctx context.Context, transactionID snowflake.ID) (*accountdomain.Transaction, error) {
	transaction, err := s.transactions.FindOne(ctx, &accountdomain.Transaction{ID: transactionID})
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, accountdomain.ErrNotFound
	}
	return transaction, nil
}

func (s *Service) findTransactionTx(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID) (*accountdomain.Transaction, error) {
	return s.transactions.WithTrx(tx).FindOne(ctx, &accountdomain.Transaction{ID: transactionID})
}
