package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *MeterReading) error

	// FindLatest returns the reading with the maximum reading_date for
	// the pair, ties broken by most recently created. A non-nil before
	// restricts the search to readings strictly before that date.
	FindLatest(ctx context.Context, db *gorm.DB, unitID snowflake.ID, utility ratedomain.UtilityType, before *time.Time) (*MeterReading, error)

	List(ctx context.Context, db *gorm.DB, unitID snowflake.ID, utility ratedomain.UtilityType) ([]MeterReading, error)
}
