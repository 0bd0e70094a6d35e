package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/inventory"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM.
// The unique idempotency key on stock_movements makes replays no-ops.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// FindMovementByKey returns the movement recorded under an idempotency key
func (r *GormStockLedgerRepository) FindMovementByKey(ctx context.Context, key string) (*inventory.StockMovement, error) {
	var model models.StockMovementModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&model).Error; err != nil {
		return nil, translateError(err, "Stock movement")
	}
	movement := model.ToDomain()
	return &movement, nil
}

// AppendMovement inserts a movement unless its idempotency key already exists
func (r *GormStockLedgerRepository) AppendMovement(ctx context.Context, movement *inventory.StockMovement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(models.StockMovementModelFromDomain(movement))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindMovementsByReference lists movements created from a source document in line order
func (r *GormStockLedgerRepository) FindMovementsByReference(ctx context.Context, referenceType string, referenceID uuid.UUID) ([]inventory.StockMovement, error) {
	var movementModels []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("reference_line ASC").
		Order("created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.StockMovement, len(movementModels))
	for i := range movementModels {
		movements[i] = movementModels[i].ToDomain()
	}
	return movements, nil
}

// FindBalance returns the balance of a product in a warehouse
func (r *GormStockLedgerRepository) FindBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	return r.findBalance(r.db.WithContext(ctx), productID, warehouseID)
}

// FindBalanceForUpdate returns the balance and, on PostgreSQL, locks its row
func (r *GormStockLedgerRepository) FindBalanceForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	return r.findBalance(forUpdate(r.db.WithContext(ctx)), productID, warehouseID)
}

func (r *GormStockLedgerRepository) findBalance(db *gorm.DB, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	var model models.StockBalanceModel
	if err := db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&model).Error; err != nil {
		return nil, translateError(err, "Stock balance")
	}
	return model.ToDomain(), nil
}

// SaveBalance inserts a first balance or updates one whose stored version is Version-1
func (r *GormStockLedgerRepository) SaveBalance(ctx context.Context, balance *inventory.StockBalance) error {
	db := r.db.WithContext(ctx)
	model := models.StockBalanceModelFromDomain(balance)
	if balance.Version <= 1 {
		err := db.Create(model).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// another writer created the row first
			return shared.ErrConcurrencyConflict
		}
		return err
	}

	result := db.Model(&models.StockBalanceModel{}).
		Where("product_id = ? AND warehouse_id = ? AND version = ?",
			balance.ProductID, balance.WarehouseID, balance.Version-1).
		Updates(map[string]any{
			"qty_on_hand":      model.QtyOnHand,
			"last_movement_at": model.LastMovementAt,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormStockLedgerRepository implements StockLedgerRepository
var _ inventory.StockLedgerRepository = (*GormStockLedgerRepository)(nil)
