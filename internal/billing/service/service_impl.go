package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	"github.com/predialis/predialis/internal/config"
	obsmetrics "github.com/predialis/predialis/internal/observability/metrics"
	"github.com/predialis/predialis/pkg/db/option"
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
	Cfg        config.Config
	AccountSvc accountdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	cfg        config.Config
	accountSvc accountdomain.Service
	obsMetrics *obsmetrics.Metrics

	billings repository.Repository[billingdomain.Billing]
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		cfg:        p.Cfg,
		accountSvc: p.AccountSvc,
		obsMetrics: p.ObsMetrics,

		billings: repository.ProvideStore[billingdomain.Billing](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req billingdomain.CreateRequest) (*billingdomain.Billing, error) {
	return s.create(ctx, s.billings, req)
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, req billingdomain.CreateRequest) (*billingdomain.Billing, error) {
	return s.create(ctx, s.billings.WithTrx(tx), req)
}

func (s *Service) create(ctx context.Context, store repository.Repository[billingdomain.Billing], req billingdomain.CreateRequest) (*billingdomain.Billing, error) {
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return nil, billingdomain.ErrMissingUnit
	}
	resident := strings.TrimSpace(req.Resident)
	if resident == "" {
		return nil, billingdomain.ErrMissingResident
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) {
		return nil, billingdomain.ErrInvalidAmount
	}
	if req.DueDate.IsZero() {
		return nil, billingdomain.ErrMissingDueDate
	}

	now := time.Now().UTC()
	billing := &billingdomain.Billing{
		ID:          s.genID.Generate(),
		Unit:        unit,
		UnitID:      req.UnitID,
		Resident:    resident,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		DueDate:     req.DueDate.UTC(),
		Status:      billingdomain.BillingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := store.Create(ctx, billing); err != nil {
		return nil, err
	}

	s.log.Info("billing created",
		zap.String("billing_id", billing.ID.String()),
		zap.String("unit", unit),
		zap.Float64("amount", req.Amount),
	)

	return billing, nil
}

func (s *Service) List(ctx context.Context, req billingdomain.ListRequest) ([]billingdomain.Billing, error) {
	filter := &billingdomain.Billing{}
	if req.Status != "" {
		status := billingdomain.BillingStatus(req.Status)
		if !status.Valid() {
			return nil, billingdomain.ErrInvalidStatus
		}
		filter.Status = status
	}

	rows, err := s.billings.Find(ctx, filter, option.WithOrder("due_date DESC, created_at DESC"))
	if err != nil {
		return nil, err
	}
	out := make([]billingdomain.Billing, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*billingdomain.Billing, error) {
	billingID, err := billingdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingdomain.ErrInvalidID
	}
	return s.load(ctx, billingID)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status billingdomain.BillingStatus) (*billingdomain.Billing, error) {
	billingID, err := billingdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingdomain.ErrInvalidID
	}
	if !status.Valid() {
		return nil, billingdomain.ErrInvalidStatus
	}

	billing, err := s.load(ctx, billingID)
	if err != nil {
		return nil, err
	}
	if !billing.Status.CanTransitionTo(status) {
		return nil, billingdomain.ErrInvalidTransition
	}

	// The operating account resolves before any state changes, so a
	// misconfigured account name fails the transition cleanly.
	var operating *accountdomain.BankAccount
	if status == billingdomain.BillingPaid {
		operating, err = s.accountSvc.GetAccountByName(ctx, s.cfg.OperatingAccountName)
		if err != nil {
			return nil, fmt.Errorf("resolve operating account: %w", err)
		}
	}

	now := time.Now().UTC()
	// Status change and payment income commit together: a failed income
	// booking rolls the billing back instead of stranding it paid with no
	// financial record. The status guard in the WHERE clause keeps a
	// concurrent transition from double-firing the payment side effect.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE billings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			status,
			now,
			billingID,
			billing.Status,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return billingdomain.ErrInvalidTransition
		}

		if status == billingdomain.BillingPaid {
			if err := s.recordPaymentIncome(ctx, tx, operating, billing); err != nil {
				s.log.Error("failed to book payment income",
					zap.String("billing_id", billing.ID.String()),
					zap.Error(err),
				)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordBillingTransition(string(status))
	}

	billing.Status = status
	billing.UpdatedAt = now
	return billing, nil
}

func (s *Service) Update(ctx context.Context, req billingdomain.UpdateRequest) (*billingdomain.Billing, error) {
	billingID, err := billingdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, billingdomain.ErrInvalidID
	}

	billing, err := s.load(ctx, billingID)
	if err != nil {
		return nil, err
	}
	if billing.Status != billingdomain.BillingPending {
		return nil, billingdomain.ErrImmutableRecord
	}

	if req.Description != nil {
		billing.Description = strings.TrimSpace(*req.Description)
	}
	if req.Resident != nil {
		resident := strings.TrimSpace(*req.Resident)
		if resident == "" {
			return nil, billingdomain.ErrMissingResident
		}
		billing.Resident = resident
	}
	if req.IsPrinted != nil {
		billing.IsPrinted = *req.IsPrinted
	}
	if req.IsSent != nil {
		billing.IsSent = *req.IsSent
	}
	billing.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Exec(
		`UPDATE billings SET description = ?, resident = ?, is_printed = ?, is_sent = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		billing.Description,
		billing.Resident,
		billing.IsPrinted,
		billing.IsSent,
		billing.UpdatedAt,
		billingID,
		billingdomain.BillingPending,
	).Error
	if err != nil {
		return nil, err
	}

	return billing, nil
}

func (s *Service) recordPaymentIncome(ctx context.Context, tx *gorm.DB, operating *accountdomain.BankAccount, billing *billingdomain.Billing) error {
	_, err := s.accountSvc.CreateTransactionTx(ctx, tx, accountdomain.CreateTransactionRequest{
		Description: fmt.Sprintf("Billing payment %s (%s)", billing.ID.String(), billing.Unit),
		Amount:      billing.Amount,
		Type:        string(accountdomain.TransactionIncome),
		Category:    "billing",
		AccountID:   operating.ID.String(),
		Date:        time.Now().UTC(),
		Status:      string(accountdomain.TransactionCompleted),
	})
	return err
}

func (s *Service) load(ctx context.Context, billingID snowflake.ID) (*billingdomain.Billing, error) {
	billing, err := s.billings.FindOne(ctx, &billingdomain.Billing{ID: billingID})
	if err != nil {
		return nil, err
	}
	if billing == nil {
		return nil, billingdomain.ErrNotFound
	}
	return billing, nil
}
