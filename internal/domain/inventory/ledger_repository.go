package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockLedgerRepository stores movements and the balances they produce
type StockLedgerRepository interface {
	// FindMovementByKey returns the movement recorded under an idempotency key
	FindMovementByKey(ctx context.Context, key string) (*StockMovement, error)

	// AppendMovement inserts a movement unless its key already exists.
	// inserted is false when the key was already present.
	AppendMovement(ctx context.Context, movement *StockMovement) (inserted bool, err error)

	// FindMovementsByReference lists movements created from a source document
	FindMovementsByReference(ctx context.Context, referenceType string, referenceID uuid.UUID) ([]StockMovement, error)

	// FindBalance returns the balance of a product in a warehouse
	FindBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*StockBalance, error)

	// FindBalanceForUpdate returns the balance and locks it where the store supports row locks
	FindBalanceForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*StockBalance, error)

	// SaveBalance inserts a new balance or updates one whose stored version is Version-1
	SaveBalance(ctx context.Context, balance *StockBalance) error
}
