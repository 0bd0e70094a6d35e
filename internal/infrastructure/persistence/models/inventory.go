package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockMovementModel is the persistence model for an immutable ledger entry.
type StockMovementModel struct {
	ID             uuid.UUID              `gorm:"type:uuid;primaryKey"`
	IdempotencyKey string                 `gorm:"type:varchar(200);not null;uniqueIndex:idx_stock_movements_idempotency_key"`
	ProductID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_stock_movements_product,priority:1"`
	WarehouseID    uuid.UUID              `gorm:"type:uuid;not null;index:idx_stock_movements_product,priority:2"`
	MovementType   inventory.MovementType `gorm:"type:varchar(30);not null"`
	Quantity       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	UnitCost       *decimal.Decimal       `gorm:"type:decimal(18,4)"`
	ReferenceType  string                 `gorm:"type:varchar(50);not null;index:idx_stock_movements_reference,priority:1"`
	ReferenceID    uuid.UUID              `gorm:"type:uuid;not null;index:idx_stock_movements_reference,priority:2"`
	ReferenceLine  int                    `gorm:"not null;default:0"`
	BalanceAfter   decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Note           string                 `gorm:"type:text"`
	CreatedBy      string                 `gorm:"type:varchar(100)"`
	CreatedAt      time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() inventory.StockMovement {
	return inventory.StockMovement{
		ID:             m.ID,
		IdempotencyKey: m.IdempotencyKey,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		MovementType:   m.MovementType,
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

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:             mv.ID,
		IdempotencyKey: mv.IdempotencyKey,
		ProductID:      mv.ProductID,
		WarehouseID:    mv.WarehouseID,
		MovementType:   mv.MovementType,
		Quantity:       mv.Quantity,
		UnitCost:       mv.UnitCost,
		ReferenceType:  mv.ReferenceType,
		ReferenceID:    mv.ReferenceID,
		ReferenceLine:  mv.ReferenceLine,
		BalanceAfter:   mv.BalanceAfter,
		Note:           mv.Note,
		CreatedBy:      mv.CreatedBy,
		CreatedAt:      mv.CreatedAt,
	}
}

// StockBalanceModel is the persistence model for the stock on hand of a product in a warehouse.
type StockBalanceModel struct {
	ProductID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QtyOnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastMovementAt *time.Time
	Version        int       `gorm:"not null;default:1"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockBalanceModel) TableName() string {
	return "stock_balances"
}

// ToDomain converts the persistence model to a domain StockBalance.
func (m *StockBalanceModel) ToDomain() *inventory.StockBalance {
	return &inventory.StockBalance{
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		QtyOnHand:      m.QtyOnHand,
		LastMovementAt: m.LastMovementAt,
		Version:        m.Version,
		UpdatedAt:      m.UpdatedAt,
	}
}

// StockBalanceModelFromDomain creates a new persistence model from a domain StockBalance.
func StockBalanceModelFromDomain(b *inventory.StockBalance) *StockBalanceModel {
	return &StockBalanceModel{
		ProductID:      b.ProductID,
		WarehouseID:    b.WarehouseID,
		QtyOnHand:      b.QtyOnHand,
		LastMovementAt: b.LastMovementAt,
		Version:        b.Version,
		UpdatedAt:      b.UpdatedAt,
	}
}
