package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/inventory-hub/backend/internal/application/inventory"
	appreceiving "github.com/inventory-hub/backend/internal/application/receiving"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestReceivingWorkflow drives a session from invoice to stock ledger against a real database
func TestReceivingWorkflow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	supplier := seedSupplier(t, db, "papilio")
	product := seedProduct(t, db, "PL-4471", "5901234123457")

	service := appreceiving.NewReceivingService(
		NewReceivingTransactionScope(db),
		NewGormReceivingSessionRepository(db),
		NewGormScanEventRepository(db),
		nil,
		appreceiving.DefaultServiceConfig(),
		zap.NewNop(),
	)
	ledger := appinventory.NewStockLedgerService(NewInventoryTransactionScope(db), NewGormStockLedgerRepository(db), zap.NewNop())

	created, err := service.Create(ctx, appreceiving.CreateSessionRequest{
		SessionHeader: appreceiving.SessionHeader{SupplierID: supplier.ID, InvoiceNumber: "FV-2024/118"},
		Lines: []appreceiving.InvoiceLineRequest{
			{EAN: "5901234123457", SupplierSKU: "4471", OrderedQty: dec("2")},
			{SupplierSKU: "9999", Description: "not in catalog", OrderedQty: dec("1")},
		},
	}, "clerk")
	require.NoError(t, err)
	require.Len(t, created.Lines, 2)
	require.NotNil(t, created.Lines[0].ProductID)
	assert.Equal(t, product.ID, *created.Lines[0].ProductID)
	assert.Nil(t, created.Lines[1].ProductID)

	_, err = service.Create(ctx, appreceiving.CreateSessionRequest{
		SessionHeader: appreceiving.SessionHeader{SupplierID: supplier.ID, InvoiceNumber: "FV-2024/118"},
		Lines:         []appreceiving.InvoiceLineRequest{{SupplierSKU: "4471", OrderedQty: dec("1")}},
	}, "clerk")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	for range 2 {
		_, err = service.Scan(ctx, created.ID, appreceiving.ScanRequest{Code: "5901234123457"}, "clerk")
		require.NoError(t, err)
	}
	unexpected, err := service.Scan(ctx, created.ID, appreceiving.ScanRequest{Code: "0000000"}, "clerk")
	require.NoError(t, err)
	assert.Equal(t, receiving.ScanResultUnexpected.String(), unexpected.Result)
	_, err = service.SetQuantity(ctx, created.ID, 2, appreceiving.SetQuantityRequest{ReceivedQty: dec("1")}, "clerk")
	require.NoError(t, err)

	summary, err := service.Summary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unexpected)
	assert.True(t, dec("3").Equal(summary.TotalReceived))

	finalized, err := service.Finalize(ctx, created.ID, "lead")
	require.NoError(t, err)
	assert.Equal(t, receiving.SessionStatusCompleted.String(), finalized.Session.Status)
	require.Len(t, finalized.Receipt.Items, 2)

	_, err = service.Finalize(ctx, created.ID, "lead")
	assert.ErrorIs(t, err, shared.ErrAlreadyFinalized)

	first, err := ledger.ApplyReceipt(ctx, &finalized.Receipt)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Applied)
	assert.Equal(t, 1, first.Skipped)
	assert.Equal(t, []int{2}, first.SkippedLines)

	replay, err := ledger.ApplyReceipt(ctx, &finalized.Receipt)
	require.NoError(t, err)
	assert.Equal(t, 0, replay.Applied)
	assert.Equal(t, 1, replay.Duplicates)

	balance, err := ledger.Balance(ctx, product.ID, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(balance.QtyOnHand))

	movements, err := ledger.Movements(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 1, movements[0].ReferenceLine)

	rebuilt, err := service.Receipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, finalized.Receipt.Stats.TotalScans, rebuilt.Stats.TotalScans)
	assert.Equal(t, 1, rebuilt.Stats.UnexpectedScans)

	err = service.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}
