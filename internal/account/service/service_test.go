package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) accountdomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:accountsvc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&accountdomain.BankAccount{}, &accountdomain.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
}

func createAccount(t *testing.T, svc accountdomain.Service, name string, balance float64) *accountdomain.BankAccount {
	t.Helper()

	account, err := svc.CreateAccount(context.Background(), accountdomain.CreateAccountRequest{
		Name:           name,
		InitialBalance: balance,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return account
}

func TestCreateAccountRejectsDuplicateName(t *testing.T) {
	svc := newTestService(t)

	createAccount(t, svc, "Conta Corrente", 1000)

	_, err := svc.CreateAccount(context.Background(), accountdomain.CreateAccountRequest{
		Name: "Conta Corrente",
	})
	assert.ErrorIs(t, err, accountdomain.ErrDuplicateAccount)
}

func TestCompletedIncomeAppliesImmediately(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 1000)

	transaction, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Taxa condominial 05/2025",
		Amount:      450,
		Type:        "income",
		AccountID:   account.ID.String(),
		Status:      "completed",
	})
	assert.NoError(t, err)

	got, err := svc.GetTransaction(ctx, transaction.ID.String())
	assert.NoError(t, err)
	assert.NotNil(t, got.AppliedAt)

	updated, err := svc.GetAccount(ctx, account.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 1450.0, updated.Balance, 1e-9)
}

func TestPendingExpenseAppliesOnCompletion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 1000)

	transaction, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Manutenção elevador",
		Amount:      320.40,
		Type:        "expense",
		AccountID:   account.ID.String(),
	})
	assert.NoError(t, err)

	// Pending: no balance effect yet.
	updated, err := svc.GetAccount(ctx, account.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, updated.Balance, 1e-9)

	_, err = svc.CompleteTransaction(ctx, transaction.ID.String())
	assert.NoError(t, err)

	updated, err = svc.GetAccount(ctx, account.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 679.60, updated.Balance, 1e-9)
}

func TestApplyIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 500)

	transaction, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Receita extra",
		Amount:      100,
		Type:        "income",
		AccountID:   account.ID.String(),
		Status:      "completed",
	})
	assert.NoError(t, err)

	// A retried Apply must not double the effect.
	assert.NoError(t, svc.Apply(ctx, transaction.ID))
	assert.NoError(t, svc.Apply(ctx, transaction.ID))

	updated, err := svc.GetAccount(ctx, account.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 600.0, updated.Balance, 1e-9)
}

func TestApplyRejectsNonCompleted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 500)

	transaction, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Pendente",
		Amount:      100,
		Type:        "income",
		AccountID:   account.ID.String(),
	})
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Apply(ctx, transaction.ID), accountdomain.ErrNotCompleted)
}

func TestTransferMovesBothLegs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	checking := createAccount(t, svc, "Conta Corrente", 18450.75)
	reserve := createAccount(t, svc, "Fundo de Reserva", 42680.30)

	_, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Aporte mensal ao fundo",
		Amount:      2000,
		Type:        "transfer",
		AccountID:   checking.ID.String(),
		ToAccountID: reserve.ID.String(),
		Status:      "completed",
	})
	assert.NoError(t, err)

	source, err := svc.GetAccount(ctx, checking.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 16450.75, source.Balance, 1e-9)

	destination, err := svc.GetAccount(ctx, reserve.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 44680.30, destination.Balance, 1e-9)
}

func TestTransferValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	checking := createAccount(t, svc, "Conta Corrente", 1000)

	_, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Sem destino",
		Amount:      100,
		Type:        "transfer",
		AccountID:   checking.ID.String(),
	})
	assert.ErrorIs(t, err, accountdomain.ErrDestinationRequired)

	_, err = svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Mesma conta",
		Amount:      100,
		Type:        "transfer",
		AccountID:   checking.ID.String(),
		ToAccountID: checking.ID.String(),
	})
	assert.ErrorIs(t, err, accountdomain.ErrSameAccountTransfer)
}

func TestTransferToMissingAccountRollsBack(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	checking := createAccount(t, svc, "Conta Corrente", 1000)
	ghost := snowflake.ID(999999999)

	transaction, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Destino inexistente",
		Amount:      300,
		Type:        "transfer",
		AccountID:   checking.ID.String(),
		ToAccountID: ghost.String(),
	})
	assert.NoError(t, err)

	_, err = svc.CompleteTransaction(ctx, transaction.ID.String())
	assert.ErrorIs(t, err, accountdomain.ErrAccountNotFound)

	// The source leg, the applied_at claim and the status flip were
	// rolled back together: the transaction is still pending, so it can
	// be corrected and retried or cancelled.
	source, err := svc.GetAccount(ctx, checking.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, source.Balance, 1e-9)

	got, err := svc.GetTransaction(ctx, transaction.ID.String())
	assert.NoError(t, err)
	assert.Nil(t, got.AppliedAt)
	assert.Equal(t, accountdomain.TransactionPending, got.Status)

	cancelled, err := svc.CancelTransaction(ctx, transaction.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, accountdomain.TransactionCancelled, cancelled.Status)
}

func TestCreateCompletedTransferToMissingAccountLeavesNothing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	checking := createAccount(t, svc, "Conta Corrente", 1000)
	ghost := snowflake.ID(999999999)

	_, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Destino inexistente",
		Amount:      300,
		Type:        "transfer",
		AccountID:   checking.ID.String(),
		ToAccountID: ghost.String(),
		Status:      "completed",
	})
	assert.ErrorIs(t, err, accountdomain.ErrAccountNotFound)

	source, err := svc.GetAccount(ctx, checking.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, source.Balance, 1e-9)

	listed, err := svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{})
	assert.NoError(t, err)
	assert.Empty(t, listed.Transactions)
}

func TestCancelPendingTransaction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 1000)

	transaction, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Cancelar depois",
		Amount:      50,
		Type:        "expense",
		AccountID:   account.ID.String(),
	})
	assert.NoError(t, err)

	cancelled, err := svc.CancelTransaction(ctx, transaction.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, accountdomain.TransactionCancelled, cancelled.Status)

	// Terminal: cannot complete a cancelled transaction.
	_, err = svc.CompleteTransaction(ctx, transaction.ID.String())
	assert.ErrorIs(t, err, accountdomain.ErrInvalidTransition)

	updated, err := svc.GetAccount(ctx, account.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 1000.0, updated.Balance, 1e-9)
}

func TestListTransactionsPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 1000)

	for i := 1; i <= 5; i++ {
		_, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
			Description: fmt.Sprintf("Despesa %d", i),
			Amount:      float64(i * 10),
			Type:        "expense",
			AccountID:   account.ID.String(),
		})
		assert.NoError(t, err)
	}

	first, err := svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, first.Transactions, 2)
	assert.True(t, first.PageInfo.HasMore)
	// Newest first.
	assert.Equal(t, "Despesa 5", first.Transactions[0].Description)
	assert.Equal(t, "Despesa 4", first.Transactions[1].Description)

	second, err := svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{
		PageSize:  2,
		PageToken: first.PageInfo.NextPageToken,
	})
	assert.NoError(t, err)
	assert.Len(t, second.Transactions, 2)
	assert.True(t, second.PageInfo.HasMore)
	assert.Equal(t, "Despesa 3", second.Transactions[0].Description)

	third, err := svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{
		PageSize:  2,
		PageToken: second.PageInfo.NextPageToken,
	})
	assert.NoError(t, err)
	assert.Len(t, third.Transactions, 1)
	assert.False(t, third.PageInfo.HasMore)
}

func TestListTransactionsFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, svc, "Conta Corrente", 1000)

	_, err := svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Taxa bancária",
		Amount:      35,
		Type:        "expense",
		AccountID:   account.ID.String(),
		Status:      "completed",
	})
	assert.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, accountdomain.CreateTransactionRequest{
		Description: "Aluguel do salão",
		Amount:      400,
		Type:        "income",
		AccountID:   account.ID.String(),
	})
	assert.NoError(t, err)

	incomes, err := svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{Type: "income"})
	assert.NoError(t, err)
	if assert.Len(t, incomes.Transactions, 1) {
		assert.Equal(t, "Aluguel do salão", incomes.Transactions[0].Description)
	}

	pending, err := svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{Status: "pending"})
	assert.NoError(t, err)
	assert.Len(t, pending.Transactions, 1)

	_, err = svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{Type: "withdrawal"})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidType)

	_, err = svc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{Status: "archived"})
	assert.ErrorIs(t, err, accountdomain.ErrInvalidStatus)
}
