package receiving

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one parsed invoice row handed over by an upstream parser
type InvoiceLine struct {
	EAN         string
	SupplierSKU string
	Description string
	OrderedQty  decimal.Decimal
	UnitPrice   *decimal.Decimal
}

// Validate checks the line can become a receiving line
func (l InvoiceLine) Validate() error {
	if strings.TrimSpace(l.EAN) == "" && strings.TrimSpace(l.SupplierSKU) == "" {
		return shared.NewValidationError("Invoice line needs an EAN or a supplier SKU")
	}
	if !l.OrderedQty.IsPositive() {
		return shared.NewValidationError("Ordered quantity must be positive")
	}
	if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	return nil
}

// ReceivingLine is one invoice line being reconciled against physical goods.
// Status is always StatusFor(ReceivedQty, OrderedQty).
type ReceivingLine struct {
	shared.BaseEntity
	SessionID   uuid.UUID
	LineNumber  int
	ProductID   *uuid.UUID
	SupplierSKU string
	EAN         string
	ProductCode string
	Description string
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal
	UnitPrice   *decimal.Decimal
	Status      LineStatus
	MatchMethod MatchMethod
}

func newReceivingLine(sessionID uuid.UUID, lineNumber int, in InvoiceLine, productCode string, match LineMatch) ReceivingLine {
	method := match.Method
	if match.ProductID == nil || !method.IsValid() {
		method = MatchMethodNone
	}
	return ReceivingLine{
		BaseEntity:  shared.NewBaseEntity(),
		SessionID:   sessionID,
		LineNumber:  lineNumber,
		ProductID:   match.ProductID,
		SupplierSKU: strings.TrimSpace(in.SupplierSKU),
		EAN:         strings.TrimSpace(in.EAN),
		ProductCode: productCode,
		Description: strings.TrimSpace(in.Description),
		OrderedQty:  in.OrderedQty,
		ReceivedQty: decimal.Zero,
		UnitPrice:   in.UnitPrice,
		Status:      LineStatusPending,
		MatchMethod: method,
	}
}

// MatchCode reports which field, if any, equals the scanned code exactly.
// Fields are compared in the order ean, supplier_sku, product_code.
func (l *ReceivingLine) MatchCode(code string) (CodeField, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	switch {
	case l.EAN != "" && strings.TrimSpace(l.EAN) == code:
		return CodeFieldEAN, true
	case l.SupplierSKU != "" && strings.TrimSpace(l.SupplierSKU) == code:
		return CodeFieldSupplierSKU, true
	case l.ProductCode != "" && strings.TrimSpace(l.ProductCode) == code:
		return CodeFieldProductCode, true
	}
	return "", false
}

// IsMatched returns true when the line is linked to a catalog product
func (l *ReceivingLine) IsMatched() bool {
	return l.ProductID != nil
}

// Outstanding returns the quantity still expected, never negative
func (l *ReceivingLine) Outstanding() decimal.Decimal {
	rest := l.OrderedQty.Sub(l.ReceivedQty)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

func (l *ReceivingLine) setReceived(qty decimal.Decimal, now time.Time) {
	l.ReceivedQty = qty
	l.Status = StatusFor(l.ReceivedQty, l.OrderedQty)
	l.UpdatedAt = now
}

func (l *ReceivingLine) assignProduct(productID uuid.UUID, now time.Time) {
	l.ProductID = &productID
	l.MatchMethod = MatchMethodManual
	l.UpdatedAt = now
}
