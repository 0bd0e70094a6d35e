package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ScanEvent is an append-only audit record of a scan or an operator edit.
// A nil LineID marks an unexpected scan that matched no line.
type ScanEvent struct {
	ID              uuid.UUID
	SessionID       uuid.UUID
	LineID          *uuid.UUID
	LineNumber      *int
	Kind            ScanEventKind
	ScannedCode     string
	ScannedCodeType catalog.IdentifierType
	ProductID       *uuid.UUID
	MatchedBy       CodeField
	Quantity        decimal.Decimal
	PreviousQty     decimal.Decimal
	NewQty          decimal.Decimal
	Result          ScanResult
	Note            string
	DeviceID        string
	ScannedBy       string
	ScannedAt       time.Time
}

// IsUnexpected returns true for a scan that matched no line
func (e *ScanEvent) IsUnexpected() bool {
	return e.Kind == ScanEventKindScan && e.LineID == nil
}

func newLineEvent(s *ReceivingSession, line *ReceivingLine, kind ScanEventKind, actor string, previous decimal.Decimal, now time.Time) ScanEvent {
	lineID := line.ID
	lineNumber := line.LineNumber
	return ScanEvent{
		ID:          uuid.New(),
		SessionID:   s.ID,
		LineID:      &lineID,
		LineNumber:  &lineNumber,
		Kind:        kind,
		ProductID:   line.ProductID,
		Quantity:    line.ReceivedQty.Sub(previous),
		PreviousQty: previous,
		NewQty:      line.ReceivedQty,
		Result:      ResultFor(line.Status),
		ScannedBy:   actor,
		ScannedAt:   now,
	}
}

// ScanTally counts scan history of one session
type ScanTally struct {
	TotalScans      int `json:"total_scans"`
	UnexpectedScans int `json:"unexpected_scans"`
}

// TallyScans counts scans and unexpected scans in an event history
func TallyScans(events []ScanEvent) ScanTally {
	var t ScanTally
	for i := range events {
		if events[i].Kind != ScanEventKindScan {
			continue
		}
		t.TotalScans++
		if events[i].IsUnexpected() {
			t.UnexpectedScans++
		}
	}
	return t
}

// Add merges another tally into this one
func (t ScanTally) Add(other ScanTally) ScanTally {
	return ScanTally{
		TotalScans:      t.TotalScans + other.TotalScans,
		UnexpectedScans: t.UnexpectedScans + other.UnexpectedScans,
	}
}
