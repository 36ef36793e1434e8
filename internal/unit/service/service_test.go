package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"github.com/predialis/predialis/internal/unit/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) unitdomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:unitsvc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&unitdomain.Unit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateUnit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	unit, err := svc.Create(ctx, unitdomain.CreateRequest{
		Block:    "A",
		Number:   "101",
		Resident: "Marina Costa",
	})
	assert.NoError(t, err)
	if assert.NotNil(t, unit) {
		assert.Equal(t, "A-101", unit.Label())
		assert.True(t, unit.Active)
	}
}

func TestCreateUnitRejectsDuplicateBlockNumber(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, unitdomain.CreateRequest{
		Block:    "B",
		Number:   "204",
		Resident: "Paulo Lima",
	})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, unitdomain.CreateRequest{
		Block:    "B",
		Number:   "204",
		Resident: "Outro Morador",
	})
	assert.ErrorIs(t, err, unitdomain.ErrDuplicateUnit)

	// Same number in another block is a different unit.
	_, err = svc.Create(ctx, unitdomain.CreateRequest{
		Block:    "C",
		Number:   "204",
		Resident: "Outro Morador",
	})
	assert.NoError(t, err)
}

func TestCreateUnitValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, unitdomain.CreateRequest{Block: "A", Resident: "x"})
	assert.ErrorIs(t, err, unitdomain.ErrInvalidNumber)

	_, err = svc.Create(ctx, unitdomain.CreateRequest{Block: "A", Number: "1"})
	assert.ErrorIs(t, err, unitdomain.ErrInvalidResident)
}

func TestUpdateUnit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	unit, err := svc.Create(ctx, unitdomain.CreateRequest{
		Block:    "A",
		Number:   "302",
		Resident: "Ana Souza",
	})
	assert.NoError(t, err)

	resident := "Novo Morador"
	inactive := false
	updated, err := svc.Update(ctx, unitdomain.UpdateRequest{
		ID:       unit.ID.String(),
		Resident: &resident,
		Active:   &inactive,
	})
	assert.NoError(t, err)
	if assert.NotNil(t, updated) {
		assert.Equal(t, "Novo Morador", updated.Resident)
		assert.False(t, updated.Active)
	}

	got, err := svc.GetByID(ctx, unit.ID.String())
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Novo Morador", got.Resident)
	}
}

func TestGetUnitNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "123456789")
	assert.ErrorIs(t, err, unitdomain.ErrNotFound)

	_, err = svc.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, unitdomain.ErrInvalidID)
}
