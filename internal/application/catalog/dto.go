package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/partner"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU        string     `json:"sku" binding:"required,min=1,max=64"`
	Name       string     `json:"name" binding:"required,min=1,max=255"`
	SupplierID *uuid.UUID `json:"supplier_id"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID         uuid.UUID  `json:"id"`
	SKU        string     `json:"sku"`
	Name       string     `json:"name"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Version    int        `json:"version"`
}

// DeleteProductResponse reports what a product deletion removed
type DeleteProductResponse struct {
	ProductID          uuid.UUID `json:"product_id"`
	IdentifiersRemoved int64     `json:"identifiers_removed"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		SupplierID: p.SupplierID,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Version:    p.Version,
	}
}

// AddIdentifierRequest adds one identifier to a product. Type is classified when empty.
type AddIdentifierRequest struct {
	Value      string     `json:"value" binding:"required,max=100"`
	Type       string     `json:"type" binding:"omitempty,identifier_type"`
	SupplierID *uuid.UUID `json:"supplier_id"`
	IsPrimary  bool       `json:"is_primary"`
	Notes      string     `json:"notes" binding:"max=500"`
}

// AddCompoundRequest splits a compound value and adds every code
type AddCompoundRequest struct {
	Value             string `json:"value" binding:"required,max=1000"`
	SetFirstAsPrimary bool   `json:"set_first_as_primary"`
	Notes             string `json:"notes" binding:"max=500"`
}

// IdentifierResponse represents an identifier in API responses
type IdentifierResponse struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"product_id"`
	Type       string     `json:"type"`
	Value      string     `json:"value"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	IsPrimary  bool       `json:"is_primary"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToIdentifierResponse converts a domain identifier to IdentifierResponse
func ToIdentifierResponse(i *catalog.ProductIdentifier) IdentifierResponse {
	return IdentifierResponse{
		ID:         i.ID,
		ProductID:  i.ProductID,
		Type:       i.Type.String(),
		Value:      i.Value,
		SupplierID: i.SupplierID,
		IsPrimary:  i.IsPrimary,
		Notes:      i.Notes,
		CreatedAt:  i.CreatedAt,
	}
}

// ToIdentifierResponses converts a slice of identifiers
func ToIdentifierResponses(ids []catalog.ProductIdentifier) []IdentifierResponse {
	out := make([]IdentifierResponse, len(ids))
	for i := range ids {
		out[i] = ToIdentifierResponse(&ids[i])
	}
	return out
}

// SkippedCode is a compound token that was not stored
type SkippedCode struct {
	Value  string `json:"value"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// AddCompoundResponse reports the outcome of a compound add
type AddCompoundResponse struct {
	Added   []IdentifierResponse `json:"added"`
	Skipped []SkippedCode        `json:"skipped"`
	Primary *IdentifierResponse  `json:"primary,omitempty"`
}

// BarcodesResponse lists the barcode-group identifiers of a product
type BarcodesResponse struct {
	ProductID uuid.UUID            `json:"product_id"`
	Primary   *IdentifierResponse  `json:"primary"`
	Barcodes  []IdentifierResponse `json:"barcodes"`
}

// LookupRequest resolves a code to a product.
// With only Code set the lookup is a barcode lookup.
type LookupRequest struct {
	Code       string     `form:"code"`
	Value      string     `form:"value"`
	Type       string     `form:"type" binding:"omitempty,identifier_type"`
	SupplierID *uuid.UUID `form:"-"` // parsed by the handler
}

// ClassifyResponse previews how a raw value would be stored
type ClassifyResponse struct {
	Input   string                   `json:"input"`
	Type    string                   `json:"type"`
	Codes   []catalog.ClassifiedCode `json:"codes"`
	Primary *catalog.ClassifiedCode  `json:"primary,omitempty"`
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Code              string `json:"code" binding:"required,min=1,max=50"`
	Name              string `json:"name" binding:"required,min=1,max=200"`
	ProductCodePrefix string `json:"product_code_prefix" binding:"max=20"`
}

// SupplierListFilter represents filter options for supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	ProductCodePrefix string    `json:"product_code_prefix"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:                s.ID,
		Code:              s.Code,
		Name:              s.Name,
		ProductCodePrefix: s.ProductCodePrefix,
		Status:            string(s.Status),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
