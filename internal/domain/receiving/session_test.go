package receiving

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoiceLine(ean, sku, ordered string) MatchedInvoiceLine {
	return MatchedInvoiceLine{
		InvoiceLine: InvoiceLine{EAN: ean, SupplierSKU: sku, Description: "item " + sku, OrderedQty: qty(ordered)},
		Match:       Unmatched,
	}
}

func newTestSession(t *testing.T, lines ...MatchedInvoiceLine) *ReceivingSession {
	t.Helper()
	s, err := NewReceivingSession(SessionParams{
		SupplierID:        uuid.New(),
		ProductCodePrefix: "PL-",
		InvoiceNumber:     "FV-2024-0117",
		CreatedBy:         "tester",
	}, lines)
	require.NoError(t, err)
	return s
}

func TestNewReceivingSession(t *testing.T) {
	t.Run("builds pending lines in order", func(t *testing.T) {
		productID := uuid.New()
		matched := invoiceLine("5901234123457", "4471", "10")
		matched.Match = LineMatch{ProductID: &productID, Method: MatchMethodEAN}

		s := newTestSession(t, matched, invoiceLine("", "4472", "2.5"))

		assert.Equal(t, SessionStatusNew, s.Status)
		assert.Equal(t, 2, s.TotalLines())
		assert.Nil(t, s.StartedAt)

		first := s.Lines[0]
		assert.Equal(t, 1, first.LineNumber)
		assert.Equal(t, s.ID, first.SessionID)
		assert.Equal(t, "PL-4471", first.ProductCode)
		assert.Equal(t, LineStatusPending, first.Status)
		assert.True(t, first.ReceivedQty.IsZero())
		assert.Equal(t, MatchMethodEAN, first.MatchMethod)
		assert.Equal(t, productID, *first.ProductID)

		second := s.Lines[1]
		assert.Equal(t, 2, second.LineNumber)
		assert.Equal(t, MatchMethodNone, second.MatchMethod)
		assert.Nil(t, second.ProductID)

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		created := events[0].(*SessionCreatedEvent)
		assert.Equal(t, 1, created.MatchedLines)
	})

	t.Run("requires invoice number", func(t *testing.T) {
		_, err := NewReceivingSession(SessionParams{SupplierID: uuid.New()}, []MatchedInvoiceLine{invoiceLine("", "1", "1")})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("requires lines", func(t *testing.T) {
		_, err := NewReceivingSession(SessionParams{SupplierID: uuid.New(), InvoiceNumber: "X"}, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects non positive ordered quantity", func(t *testing.T) {
		_, err := NewReceivingSession(SessionParams{SupplierID: uuid.New(), InvoiceNumber: "X"},
			[]MatchedInvoiceLine{invoiceLine("", "1", "0")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Contains(t, err.Error(), "Line 1")
	})

	t.Run("rejects line without codes", func(t *testing.T) {
		_, err := NewReceivingSession(SessionParams{SupplierID: uuid.New(), InvoiceNumber: "X"},
			[]MatchedInvoiceLine{invoiceLine(" ", "", "1")})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestReceivingSession_Lifecycle(t *testing.T) {
	t.Run("pause and resume", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "1", "1"))
		require.NoError(t, s.Pause())
		assert.Equal(t, SessionStatusPaused, s.Status)
		assert.NotNil(t, s.PausedAt)
		assert.Equal(t, 2, s.GetVersion())

		err := s.Pause()
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))

		require.NoError(t, s.Resume())
		assert.Equal(t, SessionStatusInProgress, s.Status)
		assert.Nil(t, s.PausedAt)
		assert.NotNil(t, s.StartedAt)

		err = s.Resume()
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	})

	t.Run("pause keeps line data", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "1", "5"))
		_, err := NewScanProcessor().Scan(s, ScanInput{Code: "1", Quantity: qty("3")})
		require.NoError(t, err)
		require.NoError(t, s.Pause())
		assert.True(t, s.Lines[0].ReceivedQty.Equal(qty("3")))
		assert.Equal(t, LineStatusPartial, s.Lines[0].Status)
	})

	t.Run("finalize twice fails with already finalized", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "1", "5"))
		_, err := s.Finalize("op", ScanTally{})
		require.NoError(t, err)
		assert.Equal(t, SessionStatusCompleted, s.Status)
		assert.NotNil(t, s.FinishedAt)

		_, err = s.Finalize("op", ScanTally{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrAlreadyFinalized))
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	})

	t.Run("finalize from paused", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "1", "5"))
		require.NoError(t, s.Pause())
		_, err := s.Finalize("op", ScanTally{})
		require.NoError(t, err)
		assert.Nil(t, s.PausedAt)
	})

	t.Run("cancelled session is terminal", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "1", "5"))
		require.NoError(t, s.Cancel("op", "wrong supplier"))
		assert.Equal(t, SessionStatusCancelled, s.Status)
		assert.Contains(t, s.Notes, "wrong supplier")

		_, err := s.Finalize("op", ScanTally{})
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
		assert.False(t, errors.Is(err, shared.ErrAlreadyFinalized))
		assert.True(t, errors.Is(s.Resume(), shared.ErrInvalidTransition))
		assert.True(t, errors.Is(s.Cancel("op", ""), shared.ErrInvalidTransition))
	})

	t.Run("completed session cannot be cancelled", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "1", "5"))
		_, err := s.Finalize("op", ScanTally{})
		require.NoError(t, err)
		assert.True(t, errors.Is(s.Cancel("op", ""), shared.ErrInvalidTransition))
	})
}

func TestReceivingSession_FinalizeReceipt(t *testing.T) {
	productID := uuid.New()
	first := invoiceLine("5901234123457", "4471", "10")
	first.Match = LineMatch{ProductID: &productID, Method: MatchMethodEAN}
	price := qty("12.50")
	first.UnitPrice = &price

	s := newTestSession(t, first, invoiceLine("", "4472", "3"), invoiceLine("", "4473", "2"), invoiceLine("", "4474", "1"))
	p := NewScanProcessor()
	_, err := p.SetQuantity(s, 1, qty("10"), "op", "")
	require.NoError(t, err)
	_, err = p.SetQuantity(s, 2, qty("1"), "op", "")
	require.NoError(t, err)
	_, err = p.SetQuantity(s, 3, qty("4"), "op", "")
	require.NoError(t, err)

	s.ClearDomainEvents()
	receipt, err := s.Finalize("closer", ScanTally{TotalScans: 7, UnexpectedScans: 2})
	require.NoError(t, err)

	assert.Equal(t, s.ID, receipt.SessionID)
	assert.Equal(t, "closer", receipt.FinishedBy)
	require.Len(t, receipt.Items, 3, "only lines with positive received quantity")
	assert.Equal(t, "PL-4471", receipt.Items[0].ProductCode)
	assert.Equal(t, productID, *receipt.Items[0].ProductID)
	assert.True(t, receipt.Items[0].UnitPrice.Equal(price))
	assert.Equal(t, 3, receipt.Items[2].LineNumber)

	stats := receipt.Stats
	assert.Equal(t, 4, stats.TotalLines)
	assert.Equal(t, 1, stats.ReceivedComplete)
	assert.Equal(t, 1, stats.ReceivedPartial)
	assert.Equal(t, 1, stats.ReceivedOverage)
	assert.Equal(t, 1, stats.NotReceived)
	assert.Equal(t, 7, stats.TotalScans)
	assert.Equal(t, 2, stats.UnexpectedScans)
	assert.True(t, stats.TotalOrdered.Equal(qty("16")))
	assert.True(t, stats.TotalReceived.Equal(qty("15")))

	var finalized *SessionFinalizedEvent
	for _, e := range s.GetDomainEvents() {
		if fe, ok := e.(*SessionFinalizedEvent); ok {
			finalized = fe
		}
	}
	require.NotNil(t, finalized)
	assert.Equal(t, receipt.SessionID, finalized.Receipt.SessionID)

	rebuilt, err := s.Receipt(ScanTally{TotalScans: 7, UnexpectedScans: 2})
	require.NoError(t, err)
	assert.Equal(t, receipt.Items, rebuilt.Items)
}

func TestReceivingSession_ReceiptRequiresCompletion(t *testing.T) {
	s := newTestSession(t, invoiceLine("", "1", "1"))
	_, err := s.Receipt(ScanTally{})
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
}

func TestReceivingSession_FindLineByCode(t *testing.T) {
	s := newTestSession(t,
		invoiceLine("5901234123457", "4471", "1"),
		invoiceLine("", "4471", "1"),
		invoiceLine("96385074", "9000", "1"),
	)

	line, field, ok := s.FindLineByCode("4471")
	require.True(t, ok)
	assert.Equal(t, 1, line.LineNumber, "first match in line order wins")
	assert.Equal(t, CodeFieldSupplierSKU, field)

	line, field, ok = s.FindLineByCode(" PL-9000 ")
	require.True(t, ok)
	assert.Equal(t, 3, line.LineNumber)
	assert.Equal(t, CodeFieldProductCode, field)

	line, field, ok = s.FindLineByCode("96385074")
	require.True(t, ok)
	assert.Equal(t, 3, line.LineNumber)
	assert.Equal(t, CodeFieldEAN, field)

	_, _, ok = s.FindLineByCode("447")
	assert.False(t, ok, "no partial matching")
	_, _, ok = s.FindLineByCode("")
	assert.False(t, ok)
}
