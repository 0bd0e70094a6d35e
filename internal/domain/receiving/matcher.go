package receiving

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
)

// ProductLookup resolves codes to catalog products. Both methods return
// shared.ErrNotFound when nothing matches.
type ProductLookup interface {
	FindProductByBarcode(ctx context.Context, code string) (*catalog.Product, error)
	FindProductByIdentifier(ctx context.Context, value string, idType catalog.IdentifierType, supplierID *uuid.UUID) (*catalog.Product, error)
}

// LineMatch is the product resolved for an invoice line and how it was found
type LineMatch struct {
	ProductID *uuid.UUID
	Method    MatchMethod
}

// Unmatched is the match of a line no product could be found for
var Unmatched = LineMatch{Method: MatchMethodNone}

// LineMatcher links invoice lines and scanned codes to catalog products
type LineMatcher struct {
	lookup ProductLookup
}

// NewLineMatcher creates a LineMatcher over the given lookup
func NewLineMatcher(lookup ProductLookup) *LineMatcher {
	return &LineMatcher{lookup: lookup}
}

// MatchInvoiceLine tries the line's EAN as a barcode first, then its supplier SKU
// within the supplier's catalogue. A line nothing resolves for is Unmatched, not an error;
// only storage failures are returned.
func (m *LineMatcher) MatchInvoiceLine(ctx context.Context, line InvoiceLine, supplierID uuid.UUID) (LineMatch, error) {
	if ean := strings.TrimSpace(line.EAN); ean != "" {
		product, err := m.lookup.FindProductByBarcode(ctx, ean)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return Unmatched, err
		}
		if product != nil {
			return LineMatch{ProductID: &product.ID, Method: MatchMethodEAN}, nil
		}
	}

	if sku := strings.TrimSpace(line.SupplierSKU); sku != "" {
		product, err := m.lookup.FindProductByIdentifier(ctx, sku, catalog.IdentifierTypeSupplierSKU, &supplierID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return Unmatched, err
		}
		if product != nil {
			return LineMatch{ProductID: &product.ID, Method: MatchMethodSupplierSKU}, nil
		}
	}

	return Unmatched, nil
}

// MatchInvoice matches every line of an invoice in order
func (m *LineMatcher) MatchInvoice(ctx context.Context, lines []InvoiceLine, supplierID uuid.UUID) ([]MatchedInvoiceLine, error) {
	matched := make([]MatchedInvoiceLine, 0, len(lines))
	for _, line := range lines {
		match, err := m.MatchInvoiceLine(ctx, line, supplierID)
		if err != nil {
			return nil, err
		}
		matched = append(matched, MatchedInvoiceLine{InvoiceLine: line, Match: match})
	}
	return matched, nil
}

// ResolveScannedCode looks up the catalog product behind a scanned barcode for the audit trail.
// It returns nil when the code is not a known barcode.
func (m *LineMatcher) ResolveScannedCode(ctx context.Context, code string) (*uuid.UUID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	product, err := m.lookup.FindProductByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product.ID, nil
}
