package receiving

import (
	"context"

	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/partner"
	"github.com/inventory-hub/backend/internal/domain/receiving"
)

// TransactionScope provides transactional access to receiving repositories.
// Every scan, edit and lifecycle change runs inside one Execute call.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories a receiving operation touches,
// all bound to the same transaction.
//
//   - SessionRepo: the ReceivingSession aggregate, lines included.
//   - ScanEventRepo: append-only audit trail.
//   - SupplierRepo, ProductRepo, IdentifierRepo: read-only catalog access for matching.
type TransactionalRepositories interface {
	SessionRepo() receiving.ReceivingSessionRepository
	ScanEventRepo() receiving.ScanEventRepository
	SupplierRepo() partner.SupplierRepository
	ProductRepo() catalog.ProductRepository
	IdentifierRepo() catalog.IdentifierRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	sessionRepo    receiving.ReceivingSessionRepository
	scanEventRepo  receiving.ScanEventRepository
	supplierRepo   partner.SupplierRepository
	productRepo    catalog.ProductRepository
	identifierRepo catalog.IdentifierRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	sessionRepo receiving.ReceivingSessionRepository,
	scanEventRepo receiving.ScanEventRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	identifierRepo catalog.IdentifierRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		sessionRepo:    sessionRepo,
		scanEventRepo:  scanEventRepo,
		supplierRepo:   supplierRepo,
		productRepo:    productRepo,
		identifierRepo: identifierRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SessionRepo returns the session repository.
func (s *NoOpTransactionScope) SessionRepo() receiving.ReceivingSessionRepository {
	return s.sessionRepo
}

// ScanEventRepo returns the scan event repository.
func (s *NoOpTransactionScope) ScanEventRepo() receiving.ScanEventRepository {
	return s.scanEventRepo
}

// SupplierRepo returns the supplier repository.
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository {
	return s.supplierRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// IdentifierRepo returns the identifier repository.
func (s *NoOpTransactionScope) IdentifierRepo() catalog.IdentifierRepository {
	return s.identifierRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
