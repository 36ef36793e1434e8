// Package option provides composable query modifiers for gorm-backed stores.
package option

import (
	"strconv"

	"github.com/predialis/predialis/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

func WithOrder(order string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if order == "" {
			return db
		}
		return db.Order(order)
	})
}

func WithCondition(query string, args ...any) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// ApplyPagination applies a keyset cursor on the id column. Snowflake ids
// are monotone with creation time, so id-descending keyset paging matches
// newest-first ordering on every dialect. The limit is one past the page
// size so the caller can detect a following page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil {
				if lastID, err := strconv.ParseInt(cursor.ID, 10, 64); err == nil {
					db = db.Where("id < ?", lastID)
				}
			}
		}
		if page.PageSize > 0 {
			db = db.Limit(page.PageSize + 1)
		}
		return db
	})
}
