package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/inventory"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultConflictRetries is how often a receipt is re-applied after another
// writer created or moved the same balance row first
const DefaultConflictRetries = 3

// StockLedgerService turns finalized receipts into stock movements.
// Every receipt line maps to one movement key, so applying the same receipt
// again credits nothing.
type StockLedgerService struct {
	txScope    TransactionScope
	ledgerRepo inventory.StockLedgerRepository
	locker     LedgerLocker
	retries    int
	logger     *zap.Logger
	metrics    *telemetry.ReceivingMetrics
}

// NewStockLedgerService creates a new StockLedgerService
func NewStockLedgerService(txScope TransactionScope, ledgerRepo inventory.StockLedgerRepository, logger *zap.Logger) *StockLedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLedgerService{
		txScope:    txScope,
		ledgerRepo: ledgerRepo,
		retries:    DefaultConflictRetries,
		logger:     logger,
	}
}

// SetConflictRetries sets how often a conflicting application is rerun.
// Negative values are ignored.
func (s *StockLedgerService) SetConflictRetries(n int) {
	if n >= 0 {
		s.retries = n
	}
}

// SetLocker sets the lock taken around each receipt application
func (s *StockLedgerService) SetLocker(locker LedgerLocker) {
	s.locker = locker
}

// SetMetrics sets the receiving metrics collector
func (s *StockLedgerService) SetMetrics(m *telemetry.ReceivingMetrics) {
	s.metrics = m
}

// ApplyReceipt records a RECEIVING_IN movement for every received item with a
// product and adds it to the item's balance. Items already in the ledger are
// counted as duplicates and leave balances untouched.
func (s *StockLedgerService) ApplyReceipt(ctx context.Context, receipt *receiving.Receipt) (_ *LedgerResult, err error) {
	if receipt == nil || receipt.SessionID == uuid.Nil {
		return nil, shared.NewValidationError("Receipt is required")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "apply_receipt",
		telemetry.AttrSessionID.String(receipt.SessionID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, ReceivingLockKey(receipt.SessionID))
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release ledger lock",
					zap.String("session_id", receipt.SessionID.String()),
					zap.Error(err),
				)
			}
		}()
	}

	warehouseID := uuid.Nil
	if receipt.WarehouseID != nil {
		warehouseID = *receipt.WarehouseID
	}

	var result *LedgerResult
	for attempt := 0; attempt <= s.retries; attempt++ {
		result, err = s.applyItems(ctx, receipt, warehouseID)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
		if s.metrics != nil {
			s.metrics.RecordConflict(ctx, "apply_receipt")
		}
		s.logger.Warn("stock balance modified concurrently, retrying",
			zap.String("session_id", receipt.SessionID.String()),
			zap.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		s.logger.Error("failed to apply receipt to stock ledger",
			zap.String("session_id", receipt.SessionID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordLedgerPosting(ctx, result.Applied, result.Duplicates, result.Skipped)
	}
	s.logger.Info("receipt applied to stock ledger",
		zap.String("session_id", receipt.SessionID.String()),
		zap.Int("applied", result.Applied),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// applyItems runs one transaction over the receipt. A rolled back attempt
// leaves no movement behind, so it can simply be run again.
func (s *StockLedgerService) applyItems(ctx context.Context, receipt *receiving.Receipt, warehouseID uuid.UUID) (*LedgerResult, error) {
	var result *LedgerResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		result = &LedgerResult{SessionID: receipt.SessionID, Movements: make([]MovementResponse, 0, len(receipt.Items))}
		ledger := repos.LedgerRepo()

		for _, item := range receipt.Items {
			if item.ProductID == nil {
				result.Skipped++
				result.SkippedLines = append(result.SkippedLines, item.LineNumber)
				continue
			}

			movement, err := inventory.NewStockMovement(inventory.MovementParams{
				IdempotencyKey: inventory.ReceivingIdempotencyKey(receipt.SessionID, item.LineNumber),
				ProductID:      *item.ProductID,
				WarehouseID:    warehouseID,
				MovementType:   inventory.MovementTypeReceivingIn,
				Quantity:       item.ReceivedQty,
				UnitCost:       item.UnitPrice,
				ReferenceType:  inventory.ReferenceTypeReceivingSession,
				ReferenceID:    receipt.SessionID,
				ReferenceLine:  item.LineNumber,
				Note:           receipt.InvoiceNumber,
				CreatedBy:      receipt.FinishedBy,
			})
			if err != nil {
				return fmt.Errorf("line %d: %w", item.LineNumber, err)
			}

			balance, err := ledger.FindBalanceForUpdate(ctx, movement.ProductID, movement.WarehouseID)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) {
					return err
				}
				balance = inventory.NewStockBalance(movement.ProductID, movement.WarehouseID)
			}
			if err := balance.Apply(movement); err != nil {
				return err
			}

			inserted, err := ledger.AppendMovement(ctx, movement)
			if err != nil {
				return err
			}
			if !inserted {
				result.Duplicates++
				continue
			}
			if err := ledger.SaveBalance(ctx, balance); err != nil {
				return err
			}
			result.Applied++
			result.Movements = append(result.Movements, ToMovementResponse(movement))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Movements lists the movements recorded for a receiving session
func (s *StockLedgerService) Movements(ctx context.Context, sessionID uuid.UUID) ([]MovementResponse, error) {
	movements, err := s.ledgerRepo.FindMovementsByReference(ctx, inventory.ReferenceTypeReceivingSession, sessionID)
	if err != nil {
		return nil, err
	}
	items := make([]MovementResponse, len(movements))
	for i := range movements {
		items[i] = ToMovementResponse(&movements[i])
	}
	return items, nil
}

// Balance returns the stock on hand of a product. A product never received has zero stock.
func (s *StockLedgerService) Balance(ctx context.Context, productID, warehouseID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.ledgerRepo.FindBalance(ctx, productID, warehouseID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		balance = inventory.NewStockBalance(productID, warehouseID)
	}
	resp := ToBalanceResponse(balance)
	return &resp, nil
}
