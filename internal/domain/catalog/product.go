package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the status is valid
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product is a catalog item. It owns its identifiers: deleting a product
// removes every identifier registered for it.
type Product struct {
	shared.BaseAggregateRoot
	SKU        string
	Name       string
	SupplierID *uuid.UUID
	Status     ProductStatus
}

// NewProduct creates a new active product
func NewProduct(sku, name string, supplierID *uuid.UUID) (*Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewValidationError("Product name cannot exceed 255 characters")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		SupplierID:        supplierID,
		Status:            ProductStatusActive,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Activate makes the product visible to barcode lookups again
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewInvalidTransitionError(string(p.Status), "activate product")
	}
	p.changeStatus(ProductStatusActive)
	return nil
}

// Deactivate hides the product from barcode lookups without deleting its identifiers
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewInvalidTransitionError(string(p.Status), "deactivate product")
	}
	p.changeStatus(ProductStatusInactive)
	return nil
}

func (p *Product) changeStatus(status ProductStatus) {
	old := p.Status
	p.Status = status
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, old, status))
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewValidationError("Product SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewValidationError("Product SKU cannot exceed 64 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewValidationError("Product SKU can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}
