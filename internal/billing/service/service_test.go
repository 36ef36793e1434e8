package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	accountservice "github.com/predialis/predialis/internal/account/service"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	"github.com/predialis/predialis/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const operatingAccountName = "Conta Corrente"

type testEnv struct {
	db         *gorm.DB
	billingSvc billingdomain.Service
	accountSvc accountdomain.Service
	operating  *accountdomain.BankAccount
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:billingsvc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&billingdomain.Billing{},
		&accountdomain.BankAccount{},
		&accountdomain.Transaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	accountSvc := accountservice.New(accountservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})

	operating, err := accountSvc.CreateAccount(context.Background(), accountdomain.CreateAccountRequest{
		Name:           operatingAccountName,
		InitialBalance: 10000,
	})
	if err != nil {
		t.Fatalf("seed operating account: %v", err)
	}

	billingSvc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Cfg:        config.Config{OperatingAccountName: operatingAccountName},
		AccountSvc: accountSvc,
	})

	return &testEnv{
		db:         db,
		billingSvc: billingSvc,
		accountSvc: accountSvc,
		operating:  operating,
	}
}

func dueOn(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *testEnv) createBilling(t *testing.T, amount float64) *billingdomain.Billing {
	t.Helper()

	billing, err := e.billingSvc.Create(context.Background(), billingdomain.CreateRequest{
		Unit:        "A-101",
		Resident:    "Marina Costa",
		Description: "Cobrança 05/2025",
		Amount:      amount,
		DueDate:     dueOn(2025, time.May, 10),
	})
	if err != nil {
		t.Fatalf("create billing: %v", err)
	}
	return billing
}

func TestCreateBillingValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.billingSvc.Create(ctx, billingdomain.CreateRequest{
		Resident: "x", Amount: 100, DueDate: dueOn(2025, time.May, 10),
	})
	assert.ErrorIs(t, err, billingdomain.ErrMissingUnit)

	_, err = env.billingSvc.Create(ctx, billingdomain.CreateRequest{
		Unit: "A-101", Amount: 100, DueDate: dueOn(2025, time.May, 10),
	})
	assert.ErrorIs(t, err, billingdomain.ErrMissingResident)

	_, err = env.billingSvc.Create(ctx, billingdomain.CreateRequest{
		Unit: "A-101", Resident: "x", Amount: 0, DueDate: dueOn(2025, time.May, 10),
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidAmount)

	_, err = env.billingSvc.Create(ctx, billingdomain.CreateRequest{
		Unit: "A-101", Resident: "x", Amount: 100,
	})
	assert.ErrorIs(t, err, billingdomain.ErrMissingDueDate)
}

func TestStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	billing := env.createBilling(t, 468)

	updated, err := env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingOverdue)
	assert.NoError(t, err)
	assert.Equal(t, billingdomain.BillingOverdue, updated.Status)

	updated, err = env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPaid)
	assert.NoError(t, err)
	assert.Equal(t, billingdomain.BillingPaid, updated.Status)

	// paid is terminal
	_, err = env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingCancelled)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidTransition)
	_, err = env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPending)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidTransition)
}

func TestCancelledIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	billing := env.createBilling(t, 120)

	_, err := env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingCancelled)
	assert.NoError(t, err)

	_, err = env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPaid)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidTransition)
}

func TestPaidBillingBooksIncomeOnOperatingAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	billing := env.createBilling(t, 468)

	_, err := env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPaid)
	assert.NoError(t, err)

	account, err := env.accountSvc.GetAccount(ctx, env.operating.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 10468.0, account.Balance, 1e-9)

	listed, err := env.accountSvc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{})
	assert.NoError(t, err)
	if assert.Len(t, listed.Transactions, 1) {
		assert.Equal(t, accountdomain.TransactionIncome, listed.Transactions[0].Type)
		assert.Equal(t, "billing", listed.Transactions[0].Category)
		assert.InDelta(t, 468.0, listed.Transactions[0].Amount, 1e-9)
		assert.NotNil(t, listed.Transactions[0].AppliedAt)
	}
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	billing := env.createBilling(t, 350)

	printed := true
	updated, err := env.billingSvc.Update(ctx, billingdomain.UpdateRequest{
		ID:        billing.ID.String(),
		IsPrinted: &printed,
	})
	assert.NoError(t, err)
	assert.True(t, updated.IsPrinted)

	_, err = env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPaid)
	assert.NoError(t, err)

	resident := "Outro"
	_, err = env.billingSvc.Update(ctx, billingdomain.UpdateRequest{
		ID:       billing.ID.String(),
		Resident: &resident,
	})
	assert.ErrorIs(t, err, billingdomain.ErrImmutableRecord)
}

func TestListByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createBilling(t, 100)
	env.createBilling(t, 200)

	_, err := env.billingSvc.UpdateStatus(ctx, first.ID.String(), billingdomain.BillingPaid)
	assert.NoError(t, err)

	pending, err := env.billingSvc.List(ctx, billingdomain.ListRequest{Status: "pending"})
	assert.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := env.billingSvc.List(ctx, billingdomain.ListRequest{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.billingSvc.List(ctx, billingdomain.ListRequest{Status: "bogus"})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidStatus)
}

func TestPaidRollsBackWhenIncomeBookingFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	billing := env.createBilling(t, 468)

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	// Same storage, but pointed at an operating account that does not
	// exist, so booking the payment income cannot succeed.
	misconfigured := New(Params{
		DB:         env.db,
		Log:        zap.NewNop(),
		GenID:      node,
		Cfg:        config.Config{OperatingAccountName: "Conta Fantasma"},
		AccountSvc: env.accountSvc,
	})

	_, err = misconfigured.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPaid)
	assert.Error(t, err)

	// The billing did not reach the terminal paid state and no income was
	// booked, so a correctly configured service can still collect it.
	reread, err := env.billingSvc.GetByID(ctx, billing.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, billingdomain.BillingPending, reread.Status)

	listed, err := env.accountSvc.ListTransactions(ctx, accountdomain.ListTransactionsRequest{})
	assert.NoError(t, err)
	assert.Empty(t, listed.Transactions)

	paid, err := env.billingSvc.UpdateStatus(ctx, billing.ID.String(), billingdomain.BillingPaid)
	assert.NoError(t, err)
	assert.Equal(t, billingdomain.BillingPaid, paid.Status)

	account, err := env.accountSvc.GetAccount(ctx, env.operating.ID.String())
	assert.NoError(t, err)
	assert.InDelta(t, 10468.0, account.Balance, 1e-9)
}
