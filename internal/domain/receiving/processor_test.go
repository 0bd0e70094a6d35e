package receiving

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanProcessor_Scan(t *testing.T) {
	p := NewScanProcessor()

	t.Run("partial then matched then overage", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("5901234123457", "4471", "10"))

		out, err := p.Scan(s, ScanInput{Code: "5901234123457", Quantity: qty("4"), Actor: "anna"})
		require.NoError(t, err)
		assert.Equal(t, ScanResultPartial, out.Result())
		assert.True(t, out.Line.ReceivedQty.Equal(qty("4")))
		assert.Equal(t, LineStatusPartial, out.Line.Status)

		out, err = p.Scan(s, ScanInput{Code: "5901234123457", Quantity: qty("6"), Actor: "anna"})
		require.NoError(t, err)
		assert.Equal(t, ScanResultMatched, out.Result())
		assert.True(t, out.Line.ReceivedQty.Equal(qty("10")))

		out, err = p.Scan(s, ScanInput{Code: "5901234123457", Quantity: qty("1"), Actor: "anna"})
		require.NoError(t, err)
		assert.Equal(t, ScanResultOverage, out.Result())
		assert.True(t, out.Line.ReceivedQty.Equal(qty("11")))

		assert.Equal(t, CodeFieldEAN, out.Event.MatchedBy)
		assert.Equal(t, catalog.IdentifierTypeEAN, out.Event.ScannedCodeType)
		assert.True(t, out.Event.PreviousQty.Equal(qty("10")))
		assert.True(t, out.Event.NewQty.Equal(qty("11")))
		assert.Equal(t, 1, *out.Event.LineNumber)
	})

	t.Run("first scan starts the session", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "4471", "1"))
		_, err := p.Scan(s, ScanInput{Code: "4471", Quantity: qty("1"), Actor: "anna"})
		require.NoError(t, err)
		assert.Equal(t, SessionStatusInProgress, s.Status)
		require.NotNil(t, s.StartedAt)
		assert.Equal(t, "anna", s.StartedBy)
		assert.Equal(t, 2, s.GetVersion(), "one version bump per operation")

		started := *s.StartedAt
		_, err = p.Scan(s, ScanInput{Code: "4471", Quantity: qty("1")})
		require.NoError(t, err)
		assert.Equal(t, started, *s.StartedAt)
	})

	t.Run("unexpected scan leaves lines unchanged", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("5901234123457", "4471", "10"))
		before := s.Lines[0]

		out, err := p.Scan(s, ScanInput{Code: "0000000000000", Quantity: qty("1"), Actor: "anna"})
		require.NoError(t, err)
		assert.Nil(t, out.Line)
		assert.Nil(t, out.Event.LineID)
		assert.Equal(t, ScanResultUnexpected, out.Result())
		assert.True(t, out.Event.IsUnexpected())
		assert.Equal(t, before.ReceivedQty, s.Lines[0].ReceivedQty)
		assert.Equal(t, before.Status, s.Lines[0].Status)

		tally := TallyScans([]ScanEvent{out.Event})
		assert.Equal(t, 1, tally.UnexpectedScans)
		assert.Equal(t, 1, s.Summary(tally).Unexpected)
	})

	t.Run("fractional quantities", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "CABLE-3", "2.5"))
		out, err := p.Scan(s, ScanInput{Code: "CABLE-3", Quantity: qty("1.25")})
		require.NoError(t, err)
		assert.Equal(t, ScanResultPartial, out.Result())
		out, err = p.Scan(s, ScanInput{Code: "CABLE-3", Quantity: qty("1.25")})
		require.NoError(t, err)
		assert.Equal(t, ScanResultMatched, out.Result())
	})

	t.Run("negative correction", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "4471", "3"))
		_, err := p.Scan(s, ScanInput{Code: "4471", Quantity: qty("1")})
		require.NoError(t, err)

		out, err := p.Scan(s, ScanInput{Code: "4471", Quantity: qty("-1")})
		require.NoError(t, err)
		assert.Equal(t, ScanResultPending, out.Result())

		_, err = p.Scan(s, ScanInput{Code: "4471", Quantity: qty("-1")})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.True(t, s.Lines[0].ReceivedQty.IsZero())
	})

	t.Run("rejects empty code and zero quantity", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "4471", "3"))
		_, err := p.Scan(s, ScanInput{Code: "  ", Quantity: qty("1")})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		_, err = p.Scan(s, ScanInput{Code: "4471", Quantity: qty("0")})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, SessionStatusNew, s.Status)
	})

	t.Run("paused and completed sessions reject scans", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "4471", "3"))
		require.NoError(t, s.Pause())
		_, err := p.Scan(s, ScanInput{Code: "4471", Quantity: qty("1")})
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))

		require.NoError(t, s.Resume())
		_, err = s.Finalize("op", ScanTally{})
		require.NoError(t, err)
		_, err = p.Scan(s, ScanInput{Code: "4471", Quantity: qty("1")})
		assert.True(t, errors.Is(err, shared.ErrAlreadyFinalized))
	})

	t.Run("keeps resolved product id on unexpected scan", func(t *testing.T) {
		s := newTestSession(t, invoiceLine("", "4471", "3"))
		productID := uuid.New()
		out, err := p.Scan(s, ScanInput{Code: "5901234123457", Quantity: qty("1"), ProductID: &productID, DeviceID: "zebra-7"})
		require.NoError(t, err)
		assert.Equal(t, productID, *out.Event.ProductID)
		assert.Equal(t, "zebra-7", out.Event.DeviceID)
	})
}

func TestScanProcessor_StatusAlwaysDerived(t *testing.T) {
	p := NewScanProcessor()
	s := newTestSession(t, invoiceLine("", "A", "5"), invoiceLine("", "B", "3"))

	steps := []func() error{
		func() error { _, err := p.Scan(s, ScanInput{Code: "A", Quantity: qty("2")}); return err },
		func() error { _, err := p.SetQuantity(s, 2, qty("7"), "op", ""); return err },
		func() error { _, err := p.AcceptAll(s, false, "op"); return err },
		func() error { _, err := p.Scan(s, ScanInput{Code: "B", Quantity: qty("-4")}); return err },
		func() error { _, err := p.ResetAll(s, "op", ""); return err },
		func() error { _, err := p.Scan(s, ScanInput{Code: "A", Quantity: qty("0.5")}); return err },
		func() error { _, err := p.AcceptAll(s, true, "op"); return err },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		for _, line := range s.Lines {
			assert.Equal(t, StatusFor(line.ReceivedQty, line.OrderedQty), line.Status, "step %d line %d", i, line.LineNumber)
		}
	}
}

func TestScanProcessor_SetQuantity(t *testing.T) {
	p := NewScanProcessor()
	s := newTestSession(t, invoiceLine("", "4471", "10"))

	out, err := p.SetQuantity(s, 1, qty("12"), "boss", "counted twice")
	require.NoError(t, err)
	assert.Equal(t, ScanEventKindManualEdit, out.Event.Kind)
	assert.Equal(t, ScanResultOverage, out.Result())
	assert.True(t, out.Event.PreviousQty.IsZero())
	assert.True(t, out.Event.NewQty.Equal(qty("12")))
	assert.Equal(t, "counted twice", out.Event.Note)
	assert.Equal(t, SessionStatusInProgress, s.Status)

	_, err = p.SetQuantity(s, 1, qty("-1"), "boss", "")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = p.SetQuantity(s, 9, qty("1"), "boss", "")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestScanProcessor_ResetThenAcceptAll(t *testing.T) {
	p := NewScanProcessor()
	s := newTestSession(t, invoiceLine("", "A", "5"), invoiceLine("", "B", "3"))

	_, err := p.Scan(s, ScanInput{Code: "A", Quantity: qty("2")})
	require.NoError(t, err)
	_, err = p.Scan(s, ScanInput{Code: "B", Quantity: qty("9")})
	require.NoError(t, err)

	reset, err := p.ResetAll(s, "op", "recount")
	require.NoError(t, err)
	assert.Equal(t, ScanEventKindBulkReset, reset.Kind)
	assert.Nil(t, reset.LineID)
	assert.True(t, reset.PreviousQty.Equal(qty("11")))
	for _, line := range s.Lines {
		assert.True(t, line.ReceivedQty.IsZero())
		assert.Equal(t, LineStatusPending, line.Status)
	}

	events, err := p.AcceptAll(s, true, "op")
	require.NoError(t, err)
	require.Len(t, events, 2, "one audit entry per accepted line")
	for _, e := range events {
		assert.Equal(t, ScanEventKindBulkAccept, e.Kind)
		assert.NotNil(t, e.LineID)
	}
	for _, line := range s.Lines {
		assert.Equal(t, LineStatusMatched, line.Status)
		assert.True(t, line.ReceivedQty.Equal(line.OrderedQty))
	}
	assert.False(t, reset.IsUnexpected())
}

func TestScanProcessor_AcceptAllRestriction(t *testing.T) {
	p := NewScanProcessor()
	s := newTestSession(t, invoiceLine("", "A", "5"), invoiceLine("", "B", "3"), invoiceLine("", "C", "1"))
	_, err := p.Scan(s, ScanInput{Code: "A", Quantity: qty("2")})
	require.NoError(t, err)
	_, err = p.Scan(s, ScanInput{Code: "C", Quantity: qty("2")})
	require.NoError(t, err)

	events, err := p.AcceptAll(s, true, "op")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 2, *events[0].LineNumber)
	assert.Equal(t, LineStatusPartial, s.Lines[0].Status, "partial line untouched when only pending")

	events, err = p.AcceptAll(s, false, "op")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, *events[0].LineNumber)
	assert.Equal(t, LineStatusOverage, s.Lines[2].Status, "overage never reduced")
}

func TestScanProcessor_AssignProduct(t *testing.T) {
	p := NewScanProcessor()
	s := newTestSession(t, invoiceLine("", "4471", "1"))
	productID := uuid.New()

	out, err := p.AssignProduct(s, 1, productID, "op")
	require.NoError(t, err)
	assert.Equal(t, MatchMethodManual, out.Line.MatchMethod)
	assert.Equal(t, productID, *out.Line.ProductID)
	assert.Equal(t, ScanEventKindAssign, out.Event.Kind)

	_, err = p.AssignProduct(s, 1, uuid.Nil, "op")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
