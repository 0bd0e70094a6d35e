package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/partner"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockIdentifierRepository is a mock implementation of IdentifierRepository
type MockIdentifierRepository struct {
	mock.Mock
}

func (m *MockIdentifierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductIdentifier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductIdentifier), args.Error(1)
}

func (m *MockIdentifierRepository) FindByScopeKey(ctx context.Context, scopeKey string) (*catalog.ProductIdentifier, error) {
	args := m.Called(ctx, scopeKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductIdentifier), args.Error(1)
}

func (m *MockIdentifierRepository) FindPrimary(ctx context.Context, primaryScope string) (*catalog.ProductIdentifier, error) {
	args := m.Called(ctx, primaryScope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductIdentifier), args.Error(1)
}

func (m *MockIdentifierRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductIdentifier, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductIdentifier), args.Error(1)
}

func (m *MockIdentifierRepository) FindBarcodes(ctx context.Context, productID uuid.UUID) ([]catalog.ProductIdentifier, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductIdentifier), args.Error(1)
}

func (m *MockIdentifierRepository) Create(ctx context.Context, identifier *catalog.ProductIdentifier) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

func (m *MockIdentifierRepository) ClearPrimary(ctx context.Context, primaryScope string) (int64, error) {
	args := m.Called(ctx, primaryScope)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIdentifierRepository) SetPrimary(ctx context.Context, id uuid.UUID, primary bool) error {
	args := m.Called(ctx, id, primary)
	return args.Error(0)
}

func (m *MockIdentifierRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIdentifierRepository) FindProductByBarcode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockIdentifierRepository) FindProductByIdentifier(ctx context.Context, value string, idType catalog.IdentifierType, supplierID *uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, value, idType, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
