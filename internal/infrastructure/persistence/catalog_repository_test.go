package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/partner"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSupplierRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)

	papilio := seedSupplier(t, db, "PAPILIO")
	seedSupplier(t, db, "BRUNO")

	t.Run("finds by code case-insensitively", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, " papilio ")
		require.NoError(t, err)
		assert.Equal(t, papilio.ID, found.ID)
		assert.Equal(t, "PL-", found.ProductCodePrefix)

		exists, err := repo.ExistsByCode(ctx, "bruno")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate code is rejected by the store", func(t *testing.T) {
		dup, err := partner.NewSupplier("papilio", "Another Papilio", "")
		require.NoError(t, err)
		err = repo.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("lists with search and count", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "code"
		filter.OrderDir = "asc"

		all, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "bruno", all[0].Code)

		filter.Search = "papi"
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("stale update is a concurrency conflict", func(t *testing.T) {
		first, err := repo.FindByID(ctx, papilio.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, papilio.ID)
		require.NoError(t, err)

		require.NoError(t, first.Deactivate())
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.Deactivate())
		assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

		stored, err := repo.FindByID(ctx, papilio.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive())
		assert.Equal(t, 2, stored.Version)
	})
}

func TestGormIdentifierRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormIdentifierRepository(db)

	product := seedProduct(t, db, "SKU-1", "5901234123457", "012345678905")
	other := seedProduct(t, db, "SKU-2")

	t.Run("same global barcode on another product is a duplicate", func(t *testing.T) {
		identifier, err := catalog.NewProductIdentifier(other.ID, "5901234123457", catalog.IdentifierTypeEAN, nil, false, "")
		require.NoError(t, err)

		err = repo.Create(ctx, identifier)
		assert.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
	})

	t.Run("second primary in the barcode group is rejected until cleared", func(t *testing.T) {
		identifier, err := catalog.NewProductIdentifier(product.ID, "ABC-998", catalog.IdentifierTypeUnverifiedBarcode, nil, true, "")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, identifier), shared.ErrDuplicateIdentifier)

		cleared, err := repo.ClearPrimary(ctx, identifier.PrimaryScope())
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleared)
		require.NoError(t, repo.Create(ctx, identifier))

		barcodes, err := repo.FindBarcodes(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, barcodes, 3)
		assert.Equal(t, "ABC-998", barcodes[0].Value)
		assert.True(t, barcodes[0].IsPrimary)
		assert.False(t, barcodes[1].IsPrimary)
	})

	t.Run("supplier sku is scoped per supplier", func(t *testing.T) {
		supplierA := seedSupplier(t, db, "SUPA")
		supplierB := seedSupplier(t, db, "SUPB")
		a, err := catalog.NewProductIdentifier(product.ID, "4471", catalog.IdentifierTypeSupplierSKU, &supplierA.ID, false, "")
		require.NoError(t, err)
		b, err := catalog.NewProductIdentifier(other.ID, "4471", catalog.IdentifierTypeSupplierSKU, &supplierB.ID, false, "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		found, err := repo.FindProductByIdentifier(ctx, "4471", catalog.IdentifierTypeSupplierSKU, &supplierB.ID)
		require.NoError(t, err)
		assert.Equal(t, other.ID, found.ID)

		_, err = repo.FindProductByIdentifier(ctx, "4471", catalog.IdentifierTypeEAN, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lookups skip inactive products", func(t *testing.T) {
		supplierA, err := NewGormSupplierRepository(db).FindByCode(ctx, "SUPA")
		require.NoError(t, err)

		found, err := repo.FindProductByBarcode(ctx, "012345678905")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		found, err = repo.FindProductByIdentifier(ctx, "4471", catalog.IdentifierTypeSupplierSKU, &supplierA.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)

		require.NoError(t, product.Deactivate())
		require.NoError(t, NewGormProductRepository(db).Save(ctx, product))

		_, err = repo.FindProductByBarcode(ctx, "012345678905")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindProductByIdentifier(ctx, "4471", catalog.IdentifierTypeSupplierSKU, &supplierA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindProductByIdentifier(ctx, "5901234123457", "", nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deleting a product removes its identifiers", func(t *testing.T) {
		removed, err := NewGormProductRepository(db).Delete(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)

		identifiers, err := repo.FindByProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Empty(t, identifiers)

		_, err = NewGormProductRepository(db).Delete(ctx, product.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
