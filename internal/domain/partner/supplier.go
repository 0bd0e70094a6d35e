package partner

import (
	"strings"
	"time"

	"github.com/inventory-hub/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier is a vendor whose invoices are received.
// ProductCodePrefix is prepended to the supplier's own catalogue numbers to form
// the product code printed on its labels (e.g. "PL-" + "4471").
type Supplier struct {
	shared.BaseAggregateRoot
	Code              string
	Name              string
	ProductCodePrefix string
	Status            SupplierStatus
}

// NewSupplier creates a new active supplier
func NewSupplier(code, name, productCodePrefix string) (*Supplier, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if err := validateSupplierCode(code); err != nil {
		return nil, err
	}
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}
	if len(productCodePrefix) > 20 {
		return nil, shared.NewValidationError("Product code prefix cannot exceed 20 characters")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		ProductCodePrefix: strings.TrimSpace(productCodePrefix),
		Status:            SupplierStatusActive,
	}, nil
}

// ProductCode derives the product code for one of the supplier's SKUs.
// An empty SKU has no product code.
func (s *Supplier) ProductCode(sku string) string {
	return DeriveProductCode(s.ProductCodePrefix, sku)
}

// DeriveProductCode joins prefix and sku, returning "" for an empty sku
func DeriveProductCode(prefix, sku string) string {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return ""
	}
	return prefix + sku
}

// Deactivate stops new receiving sessions for the supplier
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewInvalidTransitionError(string(s.Status), "deactivate supplier")
	}
	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

func validateSupplierCode(code string) error {
	if code == "" {
		return shared.NewValidationError("Supplier code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("Supplier code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("Supplier code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateSupplierName(name string) error {
	if name == "" {
		return shared.NewValidationError("Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Supplier name cannot exceed 200 characters")
	}
	return nil
}
