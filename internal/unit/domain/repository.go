package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, unit *Unit) error
	Update(ctx context.Context, db *gorm.DB, unit *Unit) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Unit, error)
	List(ctx context.Context, db *gorm.DB) ([]Unit, error)
}
