package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
)

const maxIdentifierValueLength = 100

// ProductIdentifier is one code under which a product is known: a barcode,
// a supplier's catalogue number, an internal SKU and so on.
// Identifiers are owned by their product and never change except for IsPrimary.
type ProductIdentifier struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	Type       IdentifierType
	Value      string
	SupplierID *uuid.UUID
	IsPrimary  bool
	Notes      string
}

// NewProductIdentifier creates a validated identifier.
// An empty idType is resolved with Classify.
func NewProductIdentifier(
	productID uuid.UUID,
	value string,
	idType IdentifierType,
	supplierID *uuid.UUID,
	isPrimary bool,
	notes string,
) (*ProductIdentifier, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, shared.NewValidationError("Identifier value cannot be empty")
	}
	if len(value) > maxIdentifierValueLength {
		return nil, shared.NewValidationError("Identifier value cannot exceed %d characters", maxIdentifierValueLength)
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID is required")
	}
	if idType == "" {
		idType = Classify(value)
	}
	if !idType.IsValid() {
		return nil, shared.NewValidationError("Unknown identifier type: %s", idType)
	}
	if idType == IdentifierTypeSupplierSKU && (supplierID == nil || *supplierID == uuid.Nil) {
		return nil, shared.NewValidationError("supplier_sku identifier requires a supplier")
	}

	return &ProductIdentifier{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Type:       idType,
		Value:      value,
		SupplierID: supplierID,
		IsPrimary:  isPrimary,
		Notes:      strings.TrimSpace(notes),
	}, nil
}

// ScopeKey returns the key under which the identifier value must be unique.
//
//	ean, upc, internal_sku               <type>:<value>
//	supplier_sku                         supplier_sku:<supplier>:<value>
//	unverified_barcode, manufacturer,
//	custom                               <type>:<product>:<value>
func (i *ProductIdentifier) ScopeKey() string {
	return ScopeKeyFor(i.Type, i.Value, i.ProductID, i.SupplierID)
}

// ScopeKeyFor builds the uniqueness key for an identifier that may not exist yet
func ScopeKeyFor(idType IdentifierType, value string, productID uuid.UUID, supplierID *uuid.UUID) string {
	switch {
	case idType.IsGloballyUnique():
		return fmt.Sprintf("%s:%s", idType, value)
	case idType == IdentifierTypeSupplierSKU:
		supplier := uuid.Nil
		if supplierID != nil {
			supplier = *supplierID
		}
		return fmt.Sprintf("%s:%s:%s", idType, supplier, value)
	default:
		return fmt.Sprintf("%s:%s:%s", idType, productID, value)
	}
}

// PrimaryScope returns the primary slot this identifier competes for:
// one slot for the whole barcode group, one per type otherwise.
func (i *ProductIdentifier) PrimaryScope() string {
	return PrimaryScopeFor(i.Type, i.ProductID)
}

// PrimaryScopeFor builds the primary slot key for a product and type
func PrimaryScopeFor(idType IdentifierType, productID uuid.UUID) string {
	if idType.IsBarcode() {
		return fmt.Sprintf("barcode:%s", productID)
	}
	return fmt.Sprintf("%s:%s", idType, productID)
}

// PrimaryScopeKey returns the primary slot when the identifier is primary and nil otherwise.
// Persisted with a unique index so two primaries in one slot cannot coexist.
func (i *ProductIdentifier) PrimaryScopeKey() *string {
	if !i.IsPrimary {
		return nil
	}
	scope := i.PrimaryScope()
	return &scope
}

// SetPrimary toggles the primary flag
func (i *ProductIdentifier) SetPrimary(primary bool) {
	if i.IsPrimary == primary {
		return
	}
	i.IsPrimary = primary
	i.UpdatedAt = time.Now()
}

// SharesPrimarySlotWith reports whether both identifiers compete for the same primary slot
func (i *ProductIdentifier) SharesPrimarySlotWith(other *ProductIdentifier) bool {
	return i.PrimaryScope() == other.PrimaryScope()
}
