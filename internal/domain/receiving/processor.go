package receiving

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ScanInput is a single physical scan
type ScanInput struct {
	Code      string
	Quantity  decimal.Decimal
	ProductID *uuid.UUID // catalog product behind the code, audit only
	DeviceID  string
	Actor     string
}

// ScanOutcome is the result of one scan or edit. Line is nil for an unexpected scan.
type ScanOutcome struct {
	Line  *ReceivingLine
	Event ScanEvent
}

// Result returns the recorded scan result
func (o *ScanOutcome) Result() ScanResult {
	return o.Event.Result
}

// ScanProcessor drives received quantities and line statuses from scans and
// operator edits, producing the audit events to append for each change.
type ScanProcessor struct{}

// NewScanProcessor creates a ScanProcessor
func NewScanProcessor() *ScanProcessor {
	return &ScanProcessor{}
}

// Scan adds the scanned quantity to the first line whose ean, supplier SKU or
// product code equals the code. A code matching no line is recorded as unexpected
// and changes no line.
func (p *ScanProcessor) Scan(s *ReceivingSession, in ScanInput) (*ScanOutcome, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, shared.NewValidationError("Scanned code cannot be empty")
	}
	qty := in.Quantity
	if qty.IsZero() {
		return nil, shared.NewValidationError("Scan quantity cannot be zero")
	}

	if err := s.checkAcceptsWork("scan"); err != nil {
		return nil, err
	}

	now := time.Now()
	line, field, ok := s.FindLineByCode(code)
	if ok && line.ReceivedQty.Add(qty).IsNegative() {
		return nil, shared.NewValidationError("Correction would make received quantity of line %d negative", line.LineNumber)
	}
	if err := s.beginWork("scan", in.Actor, now); err != nil {
		return nil, err
	}

	event := ScanEvent{
		ID:              uuid.New(),
		SessionID:       s.ID,
		Kind:            ScanEventKindScan,
		ScannedCode:     code,
		ScannedCodeType: catalog.Classify(code),
		ProductID:       in.ProductID,
		Quantity:        qty,
		Result:          ScanResultUnexpected,
		DeviceID:        in.DeviceID,
		ScannedBy:       in.Actor,
		ScannedAt:       now,
	}

	if !ok {
		s.markModified(now)
		return &ScanOutcome{Event: event}, nil
	}

	previous := line.ReceivedQty
	line.setReceived(previous.Add(qty), now)

	lineID, lineNumber := line.ID, line.LineNumber
	event.LineID = &lineID
	event.LineNumber = &lineNumber
	event.MatchedBy = field
	event.PreviousQty = previous
	event.NewQty = line.ReceivedQty
	event.Result = ResultFor(line.Status)
	if event.ProductID == nil {
		event.ProductID = line.ProductID
	}

	s.markModified(now)
	return &ScanOutcome{Line: line, Event: event}, nil
}

// SetQuantity overwrites a line's received quantity with an operator supplied value
func (p *ScanProcessor) SetQuantity(s *ReceivingSession, lineNumber int, qty decimal.Decimal, actor, note string) (*ScanOutcome, error) {
	if qty.IsNegative() {
		return nil, shared.NewValidationError("Received quantity cannot be negative")
	}
	line, err := s.LineByNumber(lineNumber)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.beginWork("edit quantity", actor, now); err != nil {
		return nil, err
	}

	previous := line.ReceivedQty
	line.setReceived(qty, now)

	event := newLineEvent(s, line, ScanEventKindManualEdit, actor, previous, now)
	event.Note = strings.TrimSpace(note)

	s.markModified(now)
	return &ScanOutcome{Line: line, Event: event}, nil
}

// AcceptAll sets received to ordered for every pending line, or with onlyPending
// false for every line still short of its ordered quantity. Each touched line
// gets its own audit event.
func (p *ScanProcessor) AcceptAll(s *ReceivingSession, onlyPending bool, actor string) ([]ScanEvent, error) {
	now := time.Now()
	if err := s.beginWork("accept all", actor, now); err != nil {
		return nil, err
	}

	events := make([]ScanEvent, 0)
	for i := range s.Lines {
		line := &s.Lines[i]
		if onlyPending && line.Status != LineStatusPending {
			continue
		}
		if !line.ReceivedQty.LessThan(line.OrderedQty) {
			continue
		}
		previous := line.ReceivedQty
		line.setReceived(line.OrderedQty, now)
		events = append(events, newLineEvent(s, line, ScanEventKindBulkAccept, actor, previous, now))
	}

	s.markModified(now)
	return events, nil
}

// ResetAll sets every line back to zero received and logs a single summary event
func (p *ScanProcessor) ResetAll(s *ReceivingSession, actor, note string) (*ScanEvent, error) {
	now := time.Now()
	if err := s.beginWork("reset", actor, now); err != nil {
		return nil, err
	}

	previousTotal := decimal.Zero
	for i := range s.Lines {
		previousTotal = previousTotal.Add(s.Lines[i].ReceivedQty)
		s.Lines[i].setReceived(decimal.Zero, now)
	}

	event := ScanEvent{
		ID:          uuid.New(),
		SessionID:   s.ID,
		Kind:        ScanEventKindBulkReset,
		Quantity:    previousTotal.Neg(),
		PreviousQty: previousTotal,
		NewQty:      decimal.Zero,
		Result:      ScanResultReset,
		Note:        strings.TrimSpace(note),
		ScannedBy:   actor,
		ScannedAt:   now,
	}

	s.markModified(now)
	return &event, nil
}

// AssignProduct links a line to a catalog product by hand
func (p *ScanProcessor) AssignProduct(s *ReceivingSession, lineNumber int, productID uuid.UUID, actor string) (*ScanOutcome, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID is required")
	}
	line, err := s.LineByNumber(lineNumber)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.beginWork("assign product", actor, now); err != nil {
		return nil, err
	}

	line.assignProduct(productID, now)
	event := newLineEvent(s, line, ScanEventKindAssign, actor, line.ReceivedQty, now)

	s.markModified(now)
	return &ScanOutcome{Line: line, Event: event}, nil
}
