package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	"github.com/predialis/predialis/internal/metering/repository"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:meteringsvc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&meteringdomain.MeterReading{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (meteringdomain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	svc := New(Params{
		DB:    setupTestDB(t),
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecordReadingRejectsInvalidValues(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	unitID := node.Generate().String()

	_, err := svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
		UnitID:      unitID,
		UtilityType: "water",
		Value:       -5,
		ReadingDate: date(2025, time.May, 1),
	})
	assert.ErrorIs(t, err, meteringdomain.ErrInvalidReading)

	_, err = svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
		UnitID:      unitID,
		UtilityType: "steam",
		Value:       10,
		ReadingDate: date(2025, time.May, 1),
	})
	assert.ErrorIs(t, err, meteringdomain.ErrInvalidUtilityType)

	_, err = svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
		UnitID:      "not-a-unit",
		UtilityType: "water",
		Value:       10,
		ReadingDate: date(2025, time.May, 1),
	})
	assert.ErrorIs(t, err, meteringdomain.ErrInvalidUnit)

	_, err = svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
		UnitID:      unitID,
		UtilityType: "water",
		Value:       10,
	})
	assert.ErrorIs(t, err, meteringdomain.ErrInvalidReadingDate)
}

func TestLatestReadingFollowsReadingDate(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	unitID := node.Generate()

	// Inserted out of order: the ledger orders by reading date, not by
	// insertion order, so historical imports resolve correctly.
	for _, fixture := range []struct {
		value float64
		on    time.Time
	}{
		{135.5, date(2025, time.March, 1)},
		{120.0, date(2025, time.February, 1)},
		{142.8, date(2025, time.April, 1)},
	} {
		_, err := svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
			UnitID:      unitID.String(),
			UtilityType: "water",
			Value:       fixture.value,
			ReadingDate: fixture.on,
		})
		assert.NoError(t, err)
	}

	latest, err := svc.LatestReading(ctx, unitID, ratedomain.UtilityWater, nil)
	assert.NoError(t, err)
	if assert.NotNil(t, latest) {
		assert.Equal(t, 142.8, latest.ReadingValue)
	}
}

func TestLatestReadingBeforeIsStrict(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	unitID := node.Generate()

	cutoff := date(2025, time.March, 1)
	for _, fixture := range []struct {
		value float64
		on    time.Time
	}{
		{120.0, date(2025, time.February, 1)},
		{135.5, cutoff},
	} {
		_, err := svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
			UnitID:      unitID.String(),
			UtilityType: "water",
			Value:       fixture.value,
			ReadingDate: fixture.on,
		})
		assert.NoError(t, err)
	}

	// A reading exactly on the cutoff does not qualify as "previous".
	previous, err := svc.LatestReading(ctx, unitID, ratedomain.UtilityWater, &cutoff)
	assert.NoError(t, err)
	if assert.NotNil(t, previous) {
		assert.Equal(t, 120.0, previous.ReadingValue)
	}
}

func TestLatestReadingNilWithoutHistory(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	latest, err := svc.LatestReading(ctx, node.Generate(), ratedomain.UtilityGas, nil)
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestListReadingsIsolatesUnitAndUtility(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	unitA := node.Generate()
	unitB := node.Generate()

	fixtures := []struct {
		unit    snowflake.ID
		utility string
		value   float64
	}{
		{unitA, "water", 100},
		{unitA, "gas", 40},
		{unitB, "water", 75},
	}
	for i, fixture := range fixtures {
		_, err := svc.RecordReading(ctx, meteringdomain.RecordReadingRequest{
			UnitID:      fixture.unit.String(),
			UtilityType: fixture.utility,
			Value:       fixture.value,
			ReadingDate: date(2025, time.March, 1+i),
		})
		assert.NoError(t, err)
	}

	readings, err := svc.ListReadings(ctx, unitA, ratedomain.UtilityWater)
	assert.NoError(t, err)
	if assert.Len(t, readings, 1) {
		assert.Equal(t, 100.0, readings[0].ReadingValue)
	}
}
