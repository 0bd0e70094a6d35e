package persistence

import (
	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// saveVersioned updates every column of model when the stored row still has
// version-1. A miss means another writer got there first.
func saveVersioned(db *gorm.DB, model any, id uuid.UUID, version int) error {
	result := db.Model(model).
		Where("id = ? AND version = ?", id, version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, "Record")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyPagination applies OFFSET/LIMIT from a filter; a zero page size returns everything
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}
