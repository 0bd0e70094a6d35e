package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIdentifierRepository implements IdentifierRepository using GORM
type GormIdentifierRepository struct {
	db *gorm.DB
}

// NewGormIdentifierRepository creates a new GormIdentifierRepository
func NewGormIdentifierRepository(db *gorm.DB) *GormIdentifierRepository {
	return &GormIdentifierRepository{db: db}
}

// FindByID finds an identifier by its ID
func (r *GormIdentifierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductIdentifier, error) {
	var model models.ProductIdentifierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Identifier")
	}
	return model.ToDomain(), nil
}

// FindByScopeKey returns the identifier occupying a uniqueness key
func (r *GormIdentifierRepository) FindByScopeKey(ctx context.Context, scopeKey string) (*catalog.ProductIdentifier, error) {
	var model models.ProductIdentifierModel
	if err := r.db.WithContext(ctx).Where("scope_key = ?", scopeKey).First(&model).Error; err != nil {
		return nil, translateError(err, "Identifier")
	}
	return model.ToDomain(), nil
}

// FindPrimary returns the identifier holding a primary slot
func (r *GormIdentifierRepository) FindPrimary(ctx context.Context, primaryScope string) (*catalog.ProductIdentifier, error) {
	var model models.ProductIdentifierModel
	if err := r.db.WithContext(ctx).Where("primary_scope = ?", primaryScope).First(&model).Error; err != nil {
		return nil, translateError(err, "Identifier")
	}
	return model.ToDomain(), nil
}

// FindByProduct returns all identifiers of a product, primary first, then in creation order
func (r *GormIdentifierRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductIdentifier, error) {
	return r.findForProduct(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// FindBarcodes returns the barcode-group identifiers of a product, primary first
func (r *GormIdentifierRepository) FindBarcodes(ctx context.Context, productID uuid.UUID) ([]catalog.ProductIdentifier, error) {
	return r.findForProduct(r.db.WithContext(ctx).
		Where("product_id = ? AND type IN ?", productID, catalog.BarcodeGroup()))
}

func (r *GormIdentifierRepository) findForProduct(query *gorm.DB) ([]catalog.ProductIdentifier, error) {
	var identifierModels []models.ProductIdentifierModel
	if err := query.Order("is_primary DESC").Order("created_at ASC").Find(&identifierModels).Error; err != nil {
		return nil, err
	}
	identifiers := make([]catalog.ProductIdentifier, len(identifierModels))
	for i := range identifierModels {
		identifiers[i] = *identifierModels[i].ToDomain()
	}
	return identifiers, nil
}

// Create inserts a new identifier. A unique key violation becomes a DUPLICATE_IDENTIFIER error.
func (r *GormIdentifierRepository) Create(ctx context.Context, identifier *catalog.ProductIdentifier) error {
	model := models.ProductIdentifierModelFromDomain(identifier)
	err := r.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDuplicateIdentifierError("Identifier %s %q already registered", identifier.Type, identifier.Value)
	}
	return err
}

// ClearPrimary unsets the primary flag in a slot
func (r *GormIdentifierRepository) ClearPrimary(ctx context.Context, primaryScope string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ProductIdentifierModel{}).
		Where("primary_scope = ?", primaryScope).
		Updates(map[string]any{"is_primary": false, "primary_scope": nil})
	return result.RowsAffected, result.Error
}

// SetPrimary sets or clears the primary flag on one identifier
func (r *GormIdentifierRepository) SetPrimary(ctx context.Context, id uuid.UUID, primary bool) error {
	identifier, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	identifier.SetPrimary(primary)

	err = r.db.WithContext(ctx).Model(&models.ProductIdentifierModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_primary": primary, "primary_scope": identifier.PrimaryScopeKey()}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDuplicateIdentifierError("Product already has a primary %s", identifier.Type)
	}
	return err
}

// DeleteByProduct removes all identifiers of a product
func (r *GormIdentifierRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductIdentifierModel{})
	return result.RowsAffected, result.Error
}

// FindProductByBarcode resolves an exact code among barcode-group identifiers of active products
func (r *GormIdentifierRepository) FindProductByBarcode(ctx context.Context, code string) (*catalog.Product, error) {
	var product models.ProductModel
	err := r.db.WithContext(ctx).
		Joins("JOIN product_identifiers pi ON pi.product_id = products.id").
		Where("pi.value = ? AND pi.type IN ? AND products.status = ?",
			code, catalog.BarcodeGroup(), catalog.ProductStatusActive).
		Order("pi.is_primary DESC").
		Order("pi.created_at ASC").
		First(&product).Error
	if err != nil {
		return nil, translateError(err, "Product")
	}
	return product.ToDomain(), nil
}

// FindProductByIdentifier resolves an exact value to an active product,
// optionally restricted to a type. supplierID narrows the search only for
// supplier SKUs.
func (r *GormIdentifierRepository) FindProductByIdentifier(
	ctx context.Context,
	value string,
	idType catalog.IdentifierType,
	supplierID *uuid.UUID,
) (*catalog.Product, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN product_identifiers pi ON pi.product_id = products.id").
		Where("pi.value = ? AND products.status = ?", value, catalog.ProductStatusActive)
	if idType != "" {
		query = query.Where("pi.type = ?", idType)
	}
	if idType == catalog.IdentifierTypeSupplierSKU && supplierID != nil {
		query = query.Where("pi.supplier_id = ?", *supplierID)
	}

	var product models.ProductModel
	err := query.
		Order("pi.is_primary DESC").
		Order("pi.created_at ASC").
		First(&product).Error
	if err != nil {
		return nil, translateError(err, "Product")
	}
	return product.ToDomain(), nil
}

// Ensure GormIdentifierRepository implements IdentifierRepository
var _ catalog.IdentifierRepository = (*GormIdentifierRepository)(nil)
