package inventory

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/inventory"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryLedger is a StockLedgerRepository over maps
type memoryLedger struct {
	movements map[string]inventory.StockMovement
	balances  map[string]inventory.StockBalance
	saveErr   error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		movements: make(map[string]inventory.StockMovement),
		balances:  make(map[string]inventory.StockBalance),
	}
}

func balanceKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

func (l *memoryLedger) FindMovementByKey(_ context.Context, key string) (*inventory.StockMovement, error) {
	m, ok := l.movements[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &m, nil
}

func (l *memoryLedger) AppendMovement(_ context.Context, m *inventory.StockMovement) (bool, error) {
	if _, ok := l.movements[m.IdempotencyKey]; ok {
		return false, nil
	}
	l.movements[m.IdempotencyKey] = *m
	return true, nil
}

func (l *memoryLedger) FindMovementsByReference(_ context.Context, referenceType string, referenceID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range l.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReferenceLine < out[j].ReferenceLine })
	return out, nil
}

func (l *memoryLedger) FindBalance(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	b, ok := l.balances[balanceKey(productID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &b, nil
}

func (l *memoryLedger) FindBalanceForUpdate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	return l.FindBalance(ctx, productID, warehouseID)
}

func (l *memoryLedger) SaveBalance(_ context.Context, b *inventory.StockBalance) error {
	if l.saveErr != nil {
		return l.saveErr
	}
	key := balanceKey(b.ProductID, b.WarehouseID)
	if stored, ok := l.balances[key]; ok && stored.Version != b.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	l.balances[key] = *b
	return nil
}

// MockLedgerLocker is a mock implementation of LedgerLocker
type MockLedgerLocker struct {
	mock.Mock
}

func (m *MockLedgerLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

// MockTransactionScope fails Execute with the configured error or runs fn
// against repos
type MockTransactionScope struct {
	mock.Mock
	repos TransactionalRepositories
}

func (m *MockTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.repos)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testReceipt(items ...receiving.ReceivedItem) *receiving.Receipt {
	return &receiving.Receipt{
		SessionID:     uuid.New(),
		SupplierID:    uuid.New(),
		InvoiceNumber: "FV-2024-0117",
		FinishedAt:    time.Now(),
		FinishedBy:    "anna",
		Items:         items,
	}
}

func item(line int, productID *uuid.UUID, qty string) receiving.ReceivedItem {
	return receiving.ReceivedItem{LineNumber: line, ProductID: productID, ReceivedQty: dec(qty)}
}

func newLedgerServiceForTest() (*StockLedgerService, *memoryLedger) {
	ledger := newMemoryLedger()
	return NewStockLedgerService(NewNoOpTransactionScope(ledger), ledger, nil), ledger
}

func TestStockLedgerService_ApplyReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("credits each line once", func(t *testing.T) {
		svc, ledger := newLedgerServiceForTest()
		candle, wick := uuid.New(), uuid.New()
		receipt := testReceipt(item(1, &candle, "2"), item(2, &wick, "1.5"), item(3, &candle, "3"))

		result, err := svc.ApplyReceipt(ctx, receipt)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Applied)
		assert.Zero(t, result.Duplicates)
		require.Len(t, result.Movements, 3)
		assert.Equal(t, inventory.ReceivingIdempotencyKey(receipt.SessionID, 1), result.Movements[0].IdempotencyKey)
		assert.True(t, result.Movements[2].BalanceAfter.Equal(dec("5")))

		balance, err := svc.Balance(ctx, candle, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(dec("5")))
		assert.Len(t, ledger.movements, 3)
	})

	t.Run("second application changes nothing", func(t *testing.T) {
		svc, ledger := newLedgerServiceForTest()
		candle := uuid.New()
		receipt := testReceipt(item(1, &candle, "4"))

		_, err := svc.ApplyReceipt(ctx, receipt)
		require.NoError(t, err)
		again, err := svc.ApplyReceipt(ctx, receipt)
		require.NoError(t, err)
		assert.Zero(t, again.Applied)
		assert.Equal(t, 1, again.Duplicates)
		assert.Empty(t, again.Movements)

		balance, err := svc.Balance(ctx, candle, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(dec("4")))
		assert.Len(t, ledger.movements, 1)
	})

	t.Run("lines without product are skipped", func(t *testing.T) {
		svc, _ := newLedgerServiceForTest()
		candle := uuid.New()
		receipt := testReceipt(item(1, nil, "2"), item(2, &candle, "1"))

		result, err := svc.ApplyReceipt(ctx, receipt)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, []int{1}, result.SkippedLines)
	})

	t.Run("warehouse from receipt", func(t *testing.T) {
		svc, _ := newLedgerServiceForTest()
		candle, warehouse := uuid.New(), uuid.New()
		receipt := testReceipt(item(1, &candle, "2"))
		receipt.WarehouseID = &warehouse

		_, err := svc.ApplyReceipt(ctx, receipt)
		require.NoError(t, err)

		inWarehouse, err := svc.Balance(ctx, candle, warehouse)
		require.NoError(t, err)
		assert.True(t, inWarehouse.QtyOnHand.Equal(dec("2")))
		elsewhere, err := svc.Balance(ctx, candle, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, elsewhere.QtyOnHand.IsZero())
	})

	t.Run("storage failure aborts", func(t *testing.T) {
		svc, ledger := newLedgerServiceForTest()
		ledger.saveErr = errors.New("connection reset")
		candle := uuid.New()

		_, err := svc.ApplyReceipt(ctx, testReceipt(item(1, &candle, "2")))
		assert.Error(t, err)
	})

	t.Run("nil receipt", func(t *testing.T) {
		svc, _ := newLedgerServiceForTest()
		_, err := svc.ApplyReceipt(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestStockLedgerService_Locking(t *testing.T) {
	ctx := context.Background()

	t.Run("holds the session lock while applying", func(t *testing.T) {
		svc, _ := newLedgerServiceForTest()
		locker := new(MockLedgerLocker)
		svc.SetLocker(locker)
		candle := uuid.New()
		receipt := testReceipt(item(1, &candle, "1"))

		released := false
		unlock := func(context.Context) error {
			released = true
			return nil
		}
		locker.On("Lock", ctx, ReceivingLockKey(receipt.SessionID)).Return(unlock, nil)

		_, err := svc.ApplyReceipt(ctx, receipt)
		require.NoError(t, err)
		assert.True(t, released)
	})

	t.Run("lock not obtained", func(t *testing.T) {
		svc, ledger := newLedgerServiceForTest()
		locker := new(MockLedgerLocker)
		svc.SetLocker(locker)
		candle := uuid.New()
		receipt := testReceipt(item(1, &candle, "1"))
		locker.On("Lock", ctx, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		_, err := svc.ApplyReceipt(ctx, receipt)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, ledger.movements)
	})
}

func TestStockLedgerService_ConflictRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("reruns after a concurrent first balance insert", func(t *testing.T) {
		ledger := newMemoryLedger()
		scope := &MockTransactionScope{repos: NewNoOpTransactionScope(ledger)}
		scope.On("Execute", mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		scope.On("Execute", mock.Anything).Return(nil).Once()
		svc := NewStockLedgerService(scope, ledger, nil)
		candle := uuid.New()

		result, err := svc.ApplyReceipt(ctx, testReceipt(item(1, &candle, "2")))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, 0, result.Duplicates)
		assert.True(t, ledger.balances[balanceKey(candle, uuid.Nil)].QtyOnHand.Equal(dec("2")))
		scope.AssertNumberOfCalls(t, "Execute", 2)
	})

	t.Run("gives up after the configured retries", func(t *testing.T) {
		ledger := newMemoryLedger()
		scope := &MockTransactionScope{repos: NewNoOpTransactionScope(ledger)}
		scope.On("Execute", mock.Anything).Return(shared.ErrConcurrencyConflict)
		svc := NewStockLedgerService(scope, ledger, nil)
		svc.SetConflictRetries(2)
		candle := uuid.New()

		_, err := svc.ApplyReceipt(ctx, testReceipt(item(1, &candle, "2")))
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Empty(t, ledger.movements)
		scope.AssertNumberOfCalls(t, "Execute", 3)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		ledger := newMemoryLedger()
		scope := &MockTransactionScope{repos: NewNoOpTransactionScope(ledger)}
		scope.On("Execute", mock.Anything).Return(errors.New("connection reset"))
		svc := NewStockLedgerService(scope, ledger, nil)
		candle := uuid.New()

		_, err := svc.ApplyReceipt(ctx, testReceipt(item(1, &candle, "2")))
		assert.Error(t, err)
		scope.AssertNumberOfCalls(t, "Execute", 1)
	})
}

func TestStockLedgerService_Movements(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedgerServiceForTest()
	candle := uuid.New()
	receipt := testReceipt(item(2, &candle, "1"), item(1, &candle, "3"))

	_, err := svc.ApplyReceipt(ctx, receipt)
	require.NoError(t, err)

	movements, err := svc.Movements(ctx, receipt.SessionID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, 1, movements[0].ReferenceLine)
	assert.Equal(t, "RECEIVING_IN", movements[0].MovementType)
	assert.Equal(t, "FV-2024-0117", movements[0].Note)
}

func TestReceivingFinalizedHandler(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newLedgerServiceForTest()
	handler := NewReceivingFinalizedHandler(svc, nil)
	assert.Equal(t, []string{receiving.EventTypeSessionFinalized}, handler.EventTypes())

	candle := uuid.New()
	receipt := testReceipt(item(1, &candle, "2"), item(2, nil, "1"))
	event := &receiving.SessionFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(receiving.EventTypeSessionFinalized, receiving.AggregateTypeReceivingSession, receipt.SessionID),
		Receipt:         *receipt,
	}

	require.NoError(t, handler.Handle(ctx, event))
	require.NoError(t, handler.Handle(ctx, event))
	assert.Len(t, ledger.movements, 1)

	other := shared.NewBaseDomainEvent(receiving.EventTypeSessionCreated, receiving.AggregateTypeReceivingSession, receipt.SessionID)
	assert.Error(t, handler.Handle(ctx, &other))
}
