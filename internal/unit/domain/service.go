package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Unit, error)
	List(ctx context.Context) ([]Unit, error)
	GetByID(ctx context.Context, id string) (*Unit, error)
	Update(ctx context.Context, req UpdateRequest) (*Unit, error)
}

type CreateRequest struct {
	Block    string `json:"block"`
	Number   string `json:"number"`
	Resident string `json:"resident"`
	Active   *bool  `json:"active"`
}

type UpdateRequest struct {
	ID       string  `json:"id"`
	Resident *string `json:"resident,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

var (
	ErrInvalidNumber   = errors.New("invalid_number")
	ErrInvalidResident = errors.New("invalid_resident")
	ErrDuplicateUnit   = errors.New("duplicate_unit")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
