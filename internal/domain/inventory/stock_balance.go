package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockBalance is the quantity on hand of a product in a warehouse.
// uuid.Nil as warehouse stands for the default location.
type StockBalance struct {
	ProductID      uuid.UUID
	WarehouseID    uuid.UUID
	QtyOnHand      decimal.Decimal
	LastMovementAt *time.Time
	Version        int
	UpdatedAt      time.Time
}

// NewStockBalance creates an empty balance
func NewStockBalance(productID, warehouseID uuid.UUID) *StockBalance {
	return &StockBalance{
		ProductID:   productID,
		WarehouseID: warehouseID,
		QtyOnHand:   decimal.Zero,
		Version:     0,
		UpdatedAt:   time.Now(),
	}
}

// IsNew reports whether the balance has never been stored
func (b *StockBalance) IsNew() bool {
	return b.Version == 0
}

// Apply adds the movement to the balance and stamps the movement's BalanceAfter
func (b *StockBalance) Apply(m *StockMovement) error {
	if m.ProductID != b.ProductID || m.WarehouseID != b.WarehouseID {
		return shared.NewValidationError("Movement does not belong to this balance")
	}
	b.QtyOnHand = b.QtyOnHand.Add(m.Quantity)
	m.BalanceAfter = b.QtyOnHand
	at := m.CreatedAt
	b.LastMovementAt = &at
	b.UpdatedAt = time.Now()
	b.Version++
	return nil
}
