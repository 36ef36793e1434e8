package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() unitdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, u *unitdomain.Unit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO units (id, block, number, resident, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Block,
		u.Number,
		u.Resident,
		u.Active,
		u.CreatedAt,
		u.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, u *unitdomain.Unit) error {
	return db.WithContext(ctx).Exec(
		`UPDATE units SET resident = ?, active = ?, updated_at = ? WHERE id = ?`,
		u.Resident,
		u.Active,
		u.UpdatedAt,
		u.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*unitdomain.Unit, error) {
	var unit unitdomain.Unit
	err := db.WithContext(ctx).Raw(
		`SELECT id, block, number, resident, active, created_at, updated_at
		 FROM units WHERE id = ?`,
		id,
	).Scan(&unit).Error
	if err != nil {
		return nil, err
	}
	if unit.ID == 0 {
		return nil, nil
	}
	return &unit, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]unitdomain.Unit, error) {
	var units []unitdomain.Unit
	err := db.WithContext(ctx).Raw(
		`SELECT id, block, number, resident, active, created_at, updated_at
		 FROM units ORDER BY block ASC, number ASC`,
	).Scan(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}
