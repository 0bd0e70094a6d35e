package persistence

import (
	"context"

	appcatalog "github.com/inventory-hub/backend/internal/application/catalog"
	appinventory "github.com/inventory-hub/backend/internal/application/inventory"
	appreceiving "github.com/inventory-hub/backend/internal/application/receiving"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/inventory"
	"github.com/inventory-hub/backend/internal/domain/partner"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"gorm.io/gorm"
)

// gormTransactionalRepositories hands out repositories bound to one transaction.
// It satisfies the TransactionalRepositories of every application package.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// SupplierRepo returns the supplier repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SupplierRepo() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// IdentifierRepo returns the identifier repository scoped to the current transaction.
func (r *gormTransactionalRepositories) IdentifierRepo() catalog.IdentifierRepository {
	return NewGormIdentifierRepository(r.tx)
}

// SessionRepo returns the receiving session repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SessionRepo() receiving.ReceivingSessionRepository {
	return NewGormReceivingSessionRepository(r.tx)
}

// ScanEventRepo returns the scan event repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ScanEventRepo() receiving.ScanEventRepository {
	return NewGormScanEventRepository(r.tx)
}

// LedgerRepo returns the stock ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LedgerRepo() inventory.StockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

func execute(ctx context.Context, db *gorm.DB, fn func(repos *gormTransactionalRepositories) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// CatalogTransactionScope runs catalog operations in a GORM transaction
type CatalogTransactionScope struct {
	db *gorm.DB
}

// NewCatalogTransactionScope creates a new CatalogTransactionScope.
func NewCatalogTransactionScope(db *gorm.DB) *CatalogTransactionScope {
	return &CatalogTransactionScope{db: db}
}

// Execute runs fn in a transaction, rolling back when it returns an error.
func (s *CatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return execute(ctx, s.db, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// ReceivingTransactionScope runs receiving operations in a GORM transaction
type ReceivingTransactionScope struct {
	db *gorm.DB
}

// NewReceivingTransactionScope creates a new ReceivingTransactionScope.
func NewReceivingTransactionScope(db *gorm.DB) *ReceivingTransactionScope {
	return &ReceivingTransactionScope{db: db}
}

// Execute runs fn in a transaction, rolling back when it returns an error.
func (s *ReceivingTransactionScope) Execute(ctx context.Context, fn func(repos appreceiving.TransactionalRepositories) error) error {
	return execute(ctx, s.db, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// InventoryTransactionScope runs ledger postings in a GORM transaction
type InventoryTransactionScope struct {
	db *gorm.DB
}

// NewInventoryTransactionScope creates a new InventoryTransactionScope.
func NewInventoryTransactionScope(db *gorm.DB) *InventoryTransactionScope {
	return &InventoryTransactionScope{db: db}
}

// Execute runs fn in a transaction, rolling back when it returns an error.
func (s *InventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return execute(ctx, s.db, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

var (
	_ appcatalog.TransactionScope   = (*CatalogTransactionScope)(nil)
	_ appreceiving.TransactionScope = (*ReceivingTransactionScope)(nil)
	_ appinventory.TransactionScope = (*InventoryTransactionScope)(nil)

	_ appcatalog.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
	_ appreceiving.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
