package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/partner"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database on a single connection
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(zap.NewNop(), &config.DatabaseConfig{LogLevel: "silent"}))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedSupplier(t *testing.T, db *gorm.DB, code string) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier(code, code+" s.r.o.", "PL-")
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierRepository(db).Save(context.Background(), supplier))
	return supplier
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, codes ...string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(sku, "Product "+sku, nil)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))

	for i, code := range codes {
		identifier, err := catalog.NewProductIdentifier(product.ID, code, "", nil, i == 0, "")
		require.NoError(t, err)
		require.NoError(t, NewGormIdentifierRepository(db).Create(context.Background(), identifier))
	}
	return product
}

func newSession(t *testing.T, supplierID uuid.UUID, invoice string, productID *uuid.UUID) *receiving.ReceivingSession {
	t.Helper()
	method := receiving.MatchMethodNone
	if productID != nil {
		method = receiving.MatchMethodEAN
	}
	session, err := receiving.NewReceivingSession(receiving.SessionParams{
		SupplierID:        supplierID,
		ProductCodePrefix: "PL-",
		InvoiceNumber:     invoice,
		CreatedBy:         "clerk",
	}, []receiving.MatchedInvoiceLine{
		{
			InvoiceLine: receiving.InvoiceLine{EAN: "5901234123457", SupplierSKU: "4471", OrderedQty: dec("2")},
			Match:       receiving.LineMatch{ProductID: productID, Method: method},
		},
		{
			InvoiceLine: receiving.InvoiceLine{SupplierSKU: "4472", OrderedQty: dec("1.5")},
			Match:       receiving.Unmatched,
		},
	})
	require.NoError(t, err)
	return session
}
