package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/predialis/predialis/pkg/db"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  unitdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  unitdomain.Repository
	genID *snowflake.Node
}

func New(p Params) unitdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("unit.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req unitdomain.CreateRequest) (*unitdomain.Unit, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, unitdomain.ErrInvalidNumber
	}

	resident := strings.TrimSpace(req.Resident)
	if resident == "" {
		return nil, unitdomain.ErrInvalidResident
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	unit := &unitdomain.Unit{
		ID:        s.genID.Generate(),
		Block:     strings.TrimSpace(req.Block),
		Number:    number,
		Resident:  resident,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, unit); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, unitdomain.ErrDuplicateUnit
		}
		return nil, err
	}

	return unit, nil
}

func (s *Service) List(ctx context.Context) ([]unitdomain.Unit, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (*unitdomain.Unit, error) {
	unitID, err := unitdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, unitdomain.ErrInvalidID
	}

	unit, err := s.repo.FindByID(ctx, s.db, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, unitdomain.ErrNotFound
	}
	return unit, nil
}

func (s *Service) Update(ctx context.Context, req unitdomain.UpdateRequest) (*unitdomain.Unit, error) {
	unitID, err := unitdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, unitdomain.ErrInvalidID
	}

	unit, err := s.repo.FindByID(ctx, s.db, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, unitdomain.ErrNotFound
	}

	if req.Resident != nil {
		resident := strings.TrimSpace(*req.Resident)
		if resident == "" {
			return nil, unitdomain.ErrInvalidResident
		}
		unit.Resident = resident
	}
	if req.Active != nil {
		unit.Active = *req.Active
	}
	unit.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, unit); err != nil {
		return nil, err
	}

	return unit, nil
}
