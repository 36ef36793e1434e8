package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() meteringdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *meteringdomain.MeterReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO meter_readings (id, unit_id, utility_type, reading_value, reading_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.UnitID,
		reading.UtilityType,
		reading.ReadingValue,
		reading.ReadingDate,
		reading.CreatedAt,
	).Error
}

func (r *repo) FindLatest(ctx context.Context, db *gorm.DB, unitID snowflake.ID, utility ratedomain.UtilityType, before *time.Time) (*meteringdomain.MeterReading, error) {
	query := `SELECT id, unit_id, utility_type, reading_value, reading_date, created_at
		 FROM meter_readings
		 WHERE unit_id = ? AND utility_type = ?`
	args := []any{unitID, utility}
	if before != nil {
		query += ` AND reading_date < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY reading_date DESC, created_at DESC, id DESC LIMIT 1`

	var reading meteringdomain.MeterReading
	err := db.WithContext(ctx).Raw(query, args...).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, unitID snowflake.ID, utility ratedomain.UtilityType) ([]meteringdomain.MeterReading, error) {
	var readings []meteringdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT id, unit_id, utility_type, reading_value, reading_date, created_at
		 FROM meter_readings
		 WHERE unit_id = ? AND utility_type = ?
		 ORDER BY reading_date DESC, created_at DESC`,
		unitID,
		utility,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
