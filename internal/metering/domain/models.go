// Package domain contains persistence models for meter readings.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
)

// MeterReading is one observed meter value for a unit and utility. The
// ledger is append-only: readings are never overwritten or deleted, so
// consumption billing stays reproducible from history. Ordering within a
// (unit, utility) pair follows reading_date, not insertion order, which
// keeps historical imports correct.
type MeterReading struct {
	ID           snowflake.ID           `json:"id" gorm:"primaryKey"`
	UnitID       snowflake.ID           `json:"unit_id" gorm:"not null;index:ix_meter_readings_unit_utility,priority:1"`
	UtilityType  ratedomain.UtilityType `json:"utility_type" gorm:"type:text;not null;index:ix_meter_readings_unit_utility,priority:2"`
	ReadingValue float64                `json:"reading_value" gorm:"not null"`
	ReadingDate  time.Time              `json:"reading_date" gorm:"not null;index:ix_meter_readings_unit_utility,priority:3"`
	CreatedAt    time.Time              `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MeterReading) TableName() string { return "meter_readings" }
