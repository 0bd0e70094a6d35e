package inventory

import (
	"context"
	"fmt"

	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceivingFinalizedHandler feeds the stock ledger from ReceivingSessionFinalized events
type ReceivingFinalizedHandler struct {
	ledger *StockLedgerService
	logger *zap.Logger
}

// NewReceivingFinalizedHandler creates a new handler for finalized receiving sessions
func NewReceivingFinalizedHandler(ledger *StockLedgerService, logger *zap.Logger) *ReceivingFinalizedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingFinalizedHandler{ledger: ledger, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceivingFinalizedHandler) EventTypes() []string {
	return []string{receiving.EventTypeSessionFinalized}
}

// Handle applies the event's receipt to the ledger
func (h *ReceivingFinalizedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	finalized, ok := event.(*receiving.SessionFinalizedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	result, err := h.ledger.ApplyReceipt(ctx, &finalized.Receipt)
	if err != nil {
		return err
	}
	if result.Skipped > 0 {
		h.logger.Warn("received lines without product were not posted to stock",
			zap.String("session_id", finalized.Receipt.SessionID.String()),
			zap.Ints("line_numbers", result.SkippedLines),
		)
	}
	return nil
}

var _ shared.EventHandler = (*ReceivingFinalizedHandler)(nil)
