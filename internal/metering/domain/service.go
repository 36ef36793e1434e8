package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
)

type Service interface {
	// RecordReading appends a reading. Values below zero (or NaN) are
	// rejected with ErrInvalidReading; nothing else is validated because
	// rollbacks are a composition-time concern, not an ingest one.
	RecordReading(ctx context.Context, req RecordReadingRequest) (*MeterReading, error)

	// LatestReading returns the most recent reading for the unit and
	// utility, or nil when the pair has no history yet. When before is
	// non-nil only readings strictly before that date qualify.
	LatestReading(ctx context.Context, unitID snowflake.ID, utility ratedomain.UtilityType, before *time.Time) (*MeterReading, error)

	ListReadings(ctx context.Context, unitID snowflake.ID, utility ratedomain.UtilityType) ([]MeterReading, error)
}

type RecordReadingRequest struct {
	UnitID      string    `json:"unit_id"`
	UtilityType string    `json:"utility_type"`
	Value       float64   `json:"reading_value"`
	ReadingDate time.Time `json:"reading_date"`
}

var (
	ErrInvalidReading     = errors.New("invalid_reading")
	ErrInvalidReadingDate = errors.New("invalid_reading_date")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrInvalidUtilityType = errors.New("invalid_utility_type")
)
