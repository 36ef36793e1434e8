package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"github.com/predialis/predialis/internal/rate/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ratesvc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&ratedomain.UtilityRate{}, &ratedomain.FixedRate{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (ratedomain.Service, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentRatePicksLatestEffectiveDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, fixture := range []struct {
		rate float64
		on   time.Time
	}{
		{2.80, date(2024, time.January, 1)},
		{3.20, date(2024, time.June, 1)},
		{3.75, date(2025, time.January, 1)},
	} {
		_, err := svc.CreateUtilityRate(ctx, ratedomain.CreateUtilityRateRequest{
			UtilityType:   "water",
			Rate:          fixture.rate,
			EffectiveDate: fixture.on,
		})
		assert.NoError(t, err)
	}

	rate, err := svc.CurrentRate(ctx, ratedomain.UtilityWater, date(2024, time.September, 15))
	assert.NoError(t, err)
	if assert.NotNil(t, rate) {
		assert.Equal(t, 3.20, rate.RatePerCubicMeter)
	}

	// A rate effective in the future must not win yet.
	rate, err = svc.CurrentRate(ctx, ratedomain.UtilityWater, date(2024, time.December, 31))
	assert.NoError(t, err)
	if assert.NotNil(t, rate) {
		assert.Equal(t, 3.20, rate.RatePerCubicMeter)
	}

	rate, err = svc.CurrentRate(ctx, ratedomain.UtilityWater, date(2025, time.January, 1))
	assert.NoError(t, err)
	if assert.NotNil(t, rate) {
		assert.Equal(t, 3.75, rate.RatePerCubicMeter)
	}
}

func TestCurrentRateNilWhenUnconfigured(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rate, err := svc.CurrentRate(ctx, ratedomain.UtilityGas, time.Now().UTC())
	assert.NoError(t, err)
	assert.Nil(t, rate)
}

func TestCurrentRateTieGoesToNewestRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	effective := date(2025, time.March, 1)

	_, err := svc.CreateUtilityRate(ctx, ratedomain.CreateUtilityRateRequest{
		UtilityType:   "gas",
		Rate:          5.10,
		EffectiveDate: effective,
	})
	assert.NoError(t, err)

	// Correction: same effective date, inserted later.
	_, err = svc.CreateUtilityRate(ctx, ratedomain.CreateUtilityRateRequest{
		UtilityType:   "gas",
		Rate:          5.25,
		EffectiveDate: effective,
	})
	assert.NoError(t, err)

	rate, err := svc.CurrentRate(ctx, ratedomain.UtilityGas, date(2025, time.March, 10))
	assert.NoError(t, err)
	if assert.NotNil(t, rate) {
		assert.Equal(t, 5.25, rate.RatePerCubicMeter)
	}
}

func TestCurrentFixedRateResolution(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateFixedRate(ctx, ratedomain.CreateFixedRateRequest{
		RateType:      "condo",
		BillingMethod: "fixed",
		ExpenseType:   "ordinary",
		Amount:        350,
		EffectiveDate: date(2024, time.January, 1),
	})
	assert.NoError(t, err)
	_, err = svc.CreateFixedRate(ctx, ratedomain.CreateFixedRateRequest{
		RateType:      "condo",
		BillingMethod: "fixed",
		ExpenseType:   "ordinary",
		Amount:        380,
		EffectiveDate: date(2025, time.January, 1),
	})
	assert.NoError(t, err)

	rate, err := svc.CurrentFixedRate(ctx, ratedomain.RateCondo, date(2024, time.July, 1))
	assert.NoError(t, err)
	if assert.NotNil(t, rate) {
		assert.Equal(t, 350.0, rate.Amount)
	}

	rate, err = svc.CurrentFixedRate(ctx, ratedomain.RateReserve, date(2025, time.July, 1))
	assert.NoError(t, err)
	assert.Nil(t, rate)
}

func TestCreateUtilityRateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUtilityRate(ctx, ratedomain.CreateUtilityRateRequest{
		UtilityType:   "electricity",
		Rate:          1.0,
		EffectiveDate: date(2025, time.January, 1),
	})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidUtilityType)

	_, err = svc.CreateUtilityRate(ctx, ratedomain.CreateUtilityRateRequest{
		UtilityType:   "water",
		Rate:          -1.0,
		EffectiveDate: date(2025, time.January, 1),
	})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidAmount)

	_, err = svc.CreateUtilityRate(ctx, ratedomain.CreateUtilityRateRequest{
		UtilityType: "water",
		Rate:        1.0,
	})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidEffectiveDate)
}

func TestCreateFixedRateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateFixedRate(ctx, ratedomain.CreateFixedRateRequest{
		RateType:      "parking",
		BillingMethod: "fixed",
		ExpenseType:   "ordinary",
		Amount:        100,
		EffectiveDate: date(2025, time.January, 1),
	})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidRateType)

	_, err = svc.CreateFixedRate(ctx, ratedomain.CreateFixedRateRequest{
		RateType:      "reserve",
		BillingMethod: "percent",
		ExpenseType:   "ordinary",
		Amount:        100,
		EffectiveDate: date(2025, time.January, 1),
	})
	assert.ErrorIs(t, err, ratedomain.ErrInvalidBillingMethod)
}
