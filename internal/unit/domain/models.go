// Package domain contains persistence models for condominium units.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Unit is a condominium apartment or lot, identified by block and number.
type Unit struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Block     string       `json:"block" gorm:"type:text;not null;uniqueIndex:ux_units_block_number,priority:1"`
	Number    string       `json:"number" gorm:"type:text;not null;uniqueIndex:ux_units_block_number,priority:2"`
	Resident  string       `json:"resident" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Unit) TableName() string { return "units" }

// Label is the display identity used on billings and invoices.
func (u Unit) Label() string {
	if u.Block == "" {
		return u.Number
	}
	return fmt.Sprintf("%s-%s", u.Block, u.Number)
}
