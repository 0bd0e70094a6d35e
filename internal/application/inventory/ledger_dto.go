package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID             uuid.UUID        `json:"id"`
	IdempotencyKey string           `json:"idempotency_key"`
	ProductID      uuid.UUID        `json:"product_id"`
	WarehouseID    uuid.UUID        `json:"warehouse_id"`
	MovementType   string           `json:"movement_type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType  string           `json:"reference_type"`
	ReferenceID    uuid.UUID        `json:"reference_id"`
	ReferenceLine  int              `json:"reference_line"`
	BalanceAfter   decimal.Decimal  `json:"balance_after"`
	Note           string           `json:"note,omitempty"`
	CreatedBy      string           `json:"created_by,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToMovementResponse converts a domain StockMovement to MovementResponse
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		IdempotencyKey: m.IdempotencyKey,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		MovementType:   m.MovementType.String(),
		Quantity:       m.Quantity,
		UnitCost:       m.UnitCost,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		ReferenceLine:  m.ReferenceLine,
		BalanceAfter:   m.BalanceAfter,
		Note:           m.Note,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// BalanceResponse represents the stock on hand of a product in a warehouse
type BalanceResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	QtyOnHand      decimal.Decimal `json:"qty_on_hand"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
}

// ToBalanceResponse converts a domain StockBalance to BalanceResponse
func ToBalanceResponse(b *inventory.StockBalance) BalanceResponse {
	return BalanceResponse{
		ProductID:      b.ProductID,
		WarehouseID:    b.WarehouseID,
		QtyOnHand:      b.QtyOnHand,
		LastMovementAt: b.LastMovementAt,
	}
}

// LedgerResult reports how a receipt was applied.
// Duplicates are lines whose movement already existed; Skipped lines had no product.
type LedgerResult struct {
	SessionID    uuid.UUID          `json:"session_id"`
	Applied      int                `json:"applied"`
	Duplicates   int                `json:"duplicates"`
	Skipped      int                `json:"skipped"`
	SkippedLines []int              `json:"skipped_lines,omitempty"`
	Movements    []MovementResponse `json:"movements"`
}
