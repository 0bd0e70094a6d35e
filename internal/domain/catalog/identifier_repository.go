package catalog

import (
	"context"

	"github.com/google/uuid"
)

// IdentifierRepository stores product identifiers.
// Uniqueness is checked by callers inside a transaction through FindByScopeKey
// and FindPrimary before every write; the store backs this with unique keys.
type IdentifierRepository interface {
	// FindByID finds an identifier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductIdentifier, error)

	// FindByScopeKey returns the identifier occupying the given uniqueness key
	FindByScopeKey(ctx context.Context, scopeKey string) (*ProductIdentifier, error)

	// FindPrimary returns the identifier currently holding the primary slot
	FindPrimary(ctx context.Context, primaryScope string) (*ProductIdentifier, error)

	// FindByProduct returns all identifiers of a product, primary first, then in creation order
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductIdentifier, error)

	// FindBarcodes returns the barcode-group identifiers of a product, primary first
	FindBarcodes(ctx context.Context, productID uuid.UUID) ([]ProductIdentifier, error)

	// Create inserts a new identifier
	Create(ctx context.Context, identifier *ProductIdentifier) error

	// ClearPrimary unsets the primary flag in the given slot; returns rows changed
	ClearPrimary(ctx context.Context, primaryScope string) (int64, error)

	// SetPrimary sets the primary flag on one identifier
	SetPrimary(ctx context.Context, id uuid.UUID, primary bool) error

	// DeleteByProduct removes all identifiers of a product; returns rows removed
	DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// FindProductByBarcode resolves an exact code among barcode-group identifiers of active products
	FindProductByBarcode(ctx context.Context, code string) (*Product, error)

	// FindProductByIdentifier resolves an exact value, optionally restricted to a type.
	// supplierID narrows the search only when idType is supplier_sku.
	FindProductByIdentifier(ctx context.Context, value string, idType IdentifierType, supplierID *uuid.UUID) (*Product, error)
}
