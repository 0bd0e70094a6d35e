package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the kind of stock movement
type MovementType string

const (
	// MovementTypeReceivingIn is stock received against a supplier invoice
	MovementTypeReceivingIn MovementType = "RECEIVING_IN"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementTypeReceivingIn
}

// ReferenceTypeReceivingSession marks movements created from a receiving session
const ReferenceTypeReceivingSession = "receiving_session"

// ReceivingIdempotencyKey is the deterministic key of the movement for one
// line of a finalized receiving session.
func ReceivingIdempotencyKey(sessionID uuid.UUID, lineNumber int) string {
	return fmt.Sprintf("receiving:%s:line:%d", sessionID, lineNumber)
}

// StockMovement is an immutable ledger entry. A key is applied at most once.
type StockMovement struct {
	ID             uuid.UUID
	IdempotencyKey string
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	MovementType   MovementType
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal
	ReferenceType  string
	ReferenceID    uuid.UUID
	ReferenceLine  int
	BalanceAfter   decimal.Decimal
	Note           string
	CreatedBy      string
	CreatedAt      time.Time
}

// MovementParams describes a movement to record
type MovementParams struct {
	IdempotencyKey string
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	MovementType   MovementType
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal
	ReferenceType  string
	ReferenceID    uuid.UUID
	ReferenceLine  int
	Note           string
	CreatedBy      string
}

// NewStockMovement validates and creates a movement. BalanceAfter is set when
// the movement is applied to a balance.
func NewStockMovement(p MovementParams) (*StockMovement, error) {
	key := strings.TrimSpace(p.IdempotencyKey)
	if key == "" {
		return nil, shared.NewValidationError("Idempotency key is required")
	}
	if p.ProductID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID is required")
	}
	if !p.MovementType.IsValid() {
		return nil, shared.NewValidationError("Invalid movement type: %s", p.MovementType)
	}
	if p.Quantity.IsZero() {
		return nil, shared.NewValidationError("Movement quantity cannot be zero")
	}
	if p.Quantity.IsNegative() {
		return nil, shared.NewValidationError("Receiving movement quantity must be positive")
	}

	return &StockMovement{
		ID:             uuid.New(),
		IdempotencyKey: key,
		ProductID:      p.ProductID,
		WarehouseID:    p.WarehouseID,
		MovementType:   p.MovementType,
		Quantity:       p.Quantity,
		UnitCost:       p.UnitCost,
		ReferenceType:  p.ReferenceType,
		ReferenceID:    p.ReferenceID,
		ReferenceLine:  p.ReferenceLine,
		Note:           p.Note,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      time.Now(),
	}, nil
}
