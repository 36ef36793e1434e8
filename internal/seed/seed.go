// Package seed bootstraps the records a fresh install needs before the
// first request.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	"gorm.io/gorm"
)

// EnsureOperatingAccount creates the named bank account if it does not
// exist yet. Billing payments are credited against this account, so it
// must be present before the first invoice is marked paid.
func EnsureOperatingAccount(db *gorm.DB, name string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if name == "" {
		return errors.New("seed operating account name is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing accountdomain.BankAccount
		err := tx.Where("name = ?", name).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		account := accountdomain.BankAccount{
			ID:     node.Generate(),
			Name:   name,
			Active: true,
		}
		return tx.Create(&account).Error
	})
}
