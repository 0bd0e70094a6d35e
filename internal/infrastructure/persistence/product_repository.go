package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a product by its internal SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("sku = ?", strings.TrimSpace(sku)).First(&model).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return model.ToDomain(), nil
}

// ExistsBySKU checks if a product with the given SKU exists
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("sku = ?", strings.TrimSpace(sku)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new product (version 1) or updates one whose stored version is Version-1
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if product.Version <= 1 {
		return translateError(r.db.WithContext(ctx).Create(model).Error, "Product")
	}
	return saveVersioned(r.db.WithContext(ctx), model, model.ID, product.Version)
}

// Delete removes the product and its identifiers, returning how many identifiers were removed.
// Callers run it inside a transaction so both deletes commit together.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	identifiers := db.Where("product_id = ?", id).Delete(&models.ProductIdentifierModel{})
	if identifiers.Error != nil {
		return 0, identifiers.Error
	}

	result := db.Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, translateError(gorm.ErrRecordNotFound, "Product")
	}
	return identifiers.RowsAffected, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
