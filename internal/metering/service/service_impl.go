package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
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
	Repo  meteringdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  meteringdomain.Repository
	genID *snowflake.Node
}

func New(p Params) meteringdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("metering.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) RecordReading(ctx context.Context, req meteringdomain.RecordReadingRequest) (*meteringdomain.MeterReading, error) {
	unitID, err := snowflake.ParseString(strings.TrimSpace(req.UnitID))
	if err != nil || unitID == 0 {
		return nil, meteringdomain.ErrInvalidUnit
	}

	utility := ratedomain.UtilityType(req.UtilityType)
	if !utility.Valid() {
		return nil, meteringdomain.ErrInvalidUtilityType
	}

	if req.Value < 0 || math.IsNaN(req.Value) {
		return nil, meteringdomain.ErrInvalidReading
	}
	if req.ReadingDate.IsZero() {
		return nil, meteringdomain.ErrInvalidReadingDate
	}

	reading := &meteringdomain.MeterReading{
		ID:           s.genID.Generate(),
		UnitID:       unitID,
		UtilityType:  utility,
		ReadingValue: req.Value,
		ReadingDate:  req.ReadingDate.UTC(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, reading); err != nil {
		return nil, err
	}

	s.log.Info("meter reading recorded",
		zap.String("unit_id", unitID.String()),
		zap.String("utility_type", string(utility)),
		zap.Float64("value", req.Value),
	)

	return reading, nil
}

func (s *Service) LatestReading(ctx context.Context, unitID snowflake.ID, utility ratedomain.UtilityType, before *time.Time) (*meteringdomain.MeterReading, error) {
	if !utility.Valid() {
		return nil, meteringdomain.ErrInvalidUtilityType
	}
	return s.repo.FindLatest(ctx, s.db, unitID, utility, before)
}

func (s *Service) ListReadings(ctx context.Context, unitID snowflake.ID, utility ratedomain.UtilityType) ([]meteringdomain.MeterReading, error) {
	if !utility.Valid() {
		return nil, meteringdomain.ErrInvalidUtilityType
	}
	return s.repo.List(ctx, s.db, unitID, utility)
}
