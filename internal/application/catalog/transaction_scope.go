package catalog

import (
	"context"

	"github.com/inventory-hub/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to catalog repositories.
// Clearing an old primary and inserting a new identifier happen inside one
// Execute call and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides catalog repositories bound to one transaction
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// IdentifierRepo returns the identifier repository scoped to the current transaction
	IdentifierRepo() catalog.IdentifierRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	productRepo    catalog.ProductRepository
	identifierRepo catalog.IdentifierRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	identifierRepo catalog.IdentifierRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:    productRepo,
		identifierRepo: identifierRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
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
