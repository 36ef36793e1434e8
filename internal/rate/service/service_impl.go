package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  ratedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  ratedomain.Repository
	genID *snowflake.Node
}

func New(p Params) ratedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("rate.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

// Rates are append-only. Corrections are made by inserting a new row with
// the same effective date; the newer row wins resolution.
func (s *Service) CreateUtilityRate(ctx context.Context, req ratedomain.CreateUtilityRateRequest) (*ratedomain.UtilityRate, error) {
	utility := ratedomain.UtilityType(req.UtilityType)
	if !utility.Valid() {
		return nil, ratedomain.ErrInvalidUtilityType
	}
	if req.Rate < 0 || math.IsNaN(req.Rate) {
		return nil, ratedomain.ErrInvalidAmount
	}
	if req.EffectiveDate.IsZero() {
		return nil, ratedomain.ErrInvalidEffectiveDate
	}

	now := time.Now().UTC()
	rate := &ratedomain.UtilityRate{
		ID:                s.genID.Generate(),
		UtilityType:       utility,
		RatePerCubicMeter: req.Rate,
		EffectiveDate:     req.EffectiveDate.UTC(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.InsertUtilityRate(ctx, s.db, rate); err != nil {
		return nil, err
	}

	s.log.Info("utility rate created",
		zap.String("utility_type", string(utility)),
		zap.Float64("rate", req.Rate),
		zap.Time("effective_date", rate.EffectiveDate),
	)

	return rate, nil
}

func (s *Service) CreateFixedRate(ctx context.Context, req ratedomain.CreateFixedRateRequest) (*ratedomain.FixedRate, error) {
	rateType := ratedomain.RateType(req.RateType)
	if !rateType.Valid() {
		return nil, ratedomain.ErrInvalidRateType
	}
	method := ratedomain.BillingMethod(req.BillingMethod)
	if !method.Valid() {
		return nil, ratedomain.ErrInvalidBillingMethod
	}
	expense := ratedomain.ExpenseType(req.ExpenseType)
	if !expense.Valid() {
		return nil, ratedomain.ErrInvalidExpenseType
	}
	if req.Amount < 0 || math.IsNaN(req.Amount) {
		return nil, ratedomain.ErrInvalidAmount
	}
	if req.EffectiveDate.IsZero() {
		return nil, ratedomain.ErrInvalidEffectiveDate
	}

	now := time.Now().UTC()
	rate := &ratedomain.FixedRate{
		ID:            s.genID.Generate(),
		RateType:      rateType,
		BillingMethod: method,
		ExpenseType:   expense,
		Amount:        req.Amount,
		EffectiveDate: req.EffectiveDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertFixedRate(ctx, s.db, rate); err != nil {
		return nil, err
	}

	s.log.Info("fixed rate created",
		zap.String("rate_type", string(rateType)),
		zap.Float64("amount", req.Amount),
		zap.Time("effective_date", rate.EffectiveDate),
	)

	return rate, nil
}

func (s *Service) CurrentRate(ctx context.Context, utility ratedomain.UtilityType, asOf time.Time) (*ratedomain.UtilityRate, error) {
	if !utility.Valid() {
		return nil, ratedomain.ErrInvalidUtilityType
	}
	return s.repo.FindEffectiveUtilityRate(ctx, s.db, utility, asOf.UTC())
}

func (s *Service) CurrentFixedRate(ctx context.Context, rateType ratedomain.RateType, asOf time.Time) (*ratedomain.FixedRate, error) {
	if !rateType.Valid() {
		return nil, ratedomain.ErrInvalidRateType
	}
	return s.repo.FindEffectiveFixedRate(ctx, s.db, rateType, asOf.UTC())
}

func (s *Service) ListUtilityRates(ctx context.Context, utility ratedomain.UtilityType) ([]ratedomain.UtilityRate, error) {
	if !utility.Valid() {
		return nil, ratedomain.ErrInvalidUtilityType
	}
	return s.repo.ListUtilityRates(ctx, s.db, utility)
}

func (s *Service) ListFixedRates(ctx context.Context, rateType ratedomain.RateType) ([]ratedomain.FixedRate, error) {
	if !rateType.Valid() {
		return nil, ratedomain.ErrInvalidRateType
	}
	return s.repo.ListFixedRates(ctx, s.db, rateType)
}
