package receiving

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) FindProductByBarcode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductLookup) FindProductByIdentifier(ctx context.Context, value string, idType catalog.IdentifierType, supplierID *uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, value, idType, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func testProduct(t *testing.T, sku string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, nil)
	require.NoError(t, err)
	return p
}

func TestLineMatcher_MatchInvoiceLine(t *testing.T) {
	ctx := context.Background()
	supplierID := uuid.New()

	t.Run("ean wins", func(t *testing.T) {
		lookup := new(MockProductLookup)
		product := testProduct(t, "P-1")
		lookup.On("FindProductByBarcode", ctx, "5901234123457").Return(product, nil)

		match, err := NewLineMatcher(lookup).MatchInvoiceLine(ctx, InvoiceLine{EAN: " 5901234123457 ", SupplierSKU: "4471"}, supplierID)
		require.NoError(t, err)
		assert.Equal(t, MatchMethodEAN, match.Method)
		assert.Equal(t, product.ID, *match.ProductID)
		lookup.AssertNotCalled(t, "FindProductByIdentifier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to supplier sku scoped by supplier", func(t *testing.T) {
		lookup := new(MockProductLookup)
		product := testProduct(t, "P-2")
		lookup.On("FindProductByBarcode", ctx, "5901234123457").Return(nil, shared.ErrNotFound)
		lookup.On("FindProductByIdentifier", ctx, "4471", catalog.IdentifierTypeSupplierSKU, &supplierID).Return(product, nil)

		match, err := NewLineMatcher(lookup).MatchInvoiceLine(ctx, InvoiceLine{EAN: "5901234123457", SupplierSKU: "4471"}, supplierID)
		require.NoError(t, err)
		assert.Equal(t, MatchMethodSupplierSKU, match.Method)
		assert.Equal(t, product.ID, *match.ProductID)
		lookup.AssertExpectations(t)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		lookup := new(MockProductLookup)
		lookup.On("FindProductByIdentifier", ctx, "4471", catalog.IdentifierTypeSupplierSKU, &supplierID).Return(nil, shared.ErrNotFound)

		match, err := NewLineMatcher(lookup).MatchInvoiceLine(ctx, InvoiceLine{SupplierSKU: "4471"}, supplierID)
		require.NoError(t, err)
		assert.Equal(t, Unmatched, match)
		lookup.AssertNotCalled(t, "FindProductByBarcode", mock.Anything, mock.Anything)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		lookup := new(MockProductLookup)
		boom := errors.New("connection reset")
		lookup.On("FindProductByBarcode", ctx, "5901234123457").Return(nil, boom)

		_, err := NewLineMatcher(lookup).MatchInvoiceLine(ctx, InvoiceLine{EAN: "5901234123457"}, supplierID)
		assert.ErrorIs(t, err, boom)
	})
}

func TestLineMatcher_MatchInvoice(t *testing.T) {
	ctx := context.Background()
	supplierID := uuid.New()
	lookup := new(MockProductLookup)
	product := testProduct(t, "P-3")
	lookup.On("FindProductByBarcode", ctx, "96385074").Return(product, nil)
	lookup.On("FindProductByIdentifier", ctx, "X-1", catalog.IdentifierTypeSupplierSKU, &supplierID).Return(nil, shared.ErrNotFound)

	lines, err := NewLineMatcher(lookup).MatchInvoice(ctx, []InvoiceLine{
		{EAN: "96385074", OrderedQty: qty("1")},
		{SupplierSKU: "X-1", OrderedQty: qty("2")},
	}, supplierID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, MatchMethodEAN, lines[0].Match.Method)
	assert.Equal(t, MatchMethodNone, lines[1].Match.Method)
	assert.True(t, lines[1].OrderedQty.Equal(qty("2")))
}

func TestLineMatcher_ResolveScannedCode(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockProductLookup)
	product := testProduct(t, "P-4")
	lookup.On("FindProductByBarcode", ctx, "96385074").Return(product, nil)
	lookup.On("FindProductByBarcode", ctx, "nope").Return(nil, shared.ErrNotFound)
	m := NewLineMatcher(lookup)

	id, err := m.ResolveScannedCode(ctx, "96385074")
	require.NoError(t, err)
	assert.Equal(t, product.ID, *id)

	id, err = m.ResolveScannedCode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = m.ResolveScannedCode(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, id)
}
