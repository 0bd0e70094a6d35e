package receiving

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/partner"
	"github.com/inventory-hub/backend/internal/domain/shared"
)

// AggregateTypeReceivingSession is the aggregate type for receiving sessions
const AggregateTypeReceivingSession = "ReceivingSession"

// MatchedInvoiceLine is an invoice line together with its catalog match
type MatchedInvoiceLine struct {
	InvoiceLine
	Match LineMatch
}

// SessionParams describes a new receiving session
type SessionParams struct {
	SupplierID        uuid.UUID
	ProductCodePrefix string
	WarehouseID       *uuid.UUID
	InvoiceNumber     string
	InvoiceDate       *time.Time
	SourceFile        string
	Notes             string
	CreatedBy         string
}

// ReceivingSession reconciles one supplier invoice against the goods that
// actually arrived. It owns its lines; there is one session per supplier
// and invoice number.
type ReceivingSession struct {
	shared.BaseAggregateRoot
	SupplierID        uuid.UUID
	WarehouseID       *uuid.UUID
	InvoiceNumber     string
	InvoiceDate       *time.Time
	SourceFile        string
	ProductCodePrefix string
	Status            SessionStatus
	Notes             string
	CreatedBy         string
	StartedBy         string
	FinishedBy        string
	StartedAt         *time.Time
	PausedAt          *time.Time
	FinishedAt        *time.Time
	Lines             []ReceivingLine
}

// NewReceivingSession creates a session in status new with one pending line per invoice line
func NewReceivingSession(p SessionParams, lines []MatchedInvoiceLine) (*ReceivingSession, error) {
	invoice := strings.TrimSpace(p.InvoiceNumber)
	if p.SupplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID is required")
	}
	if invoice == "" {
		return nil, shared.NewValidationError("Invoice number is required")
	}
	if len(invoice) > 100 {
		return nil, shared.NewValidationError("Invoice number cannot exceed 100 characters")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Invoice has no lines")
	}

	s := &ReceivingSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        p.SupplierID,
		WarehouseID:       p.WarehouseID,
		InvoiceNumber:     invoice,
		InvoiceDate:       p.InvoiceDate,
		SourceFile:        strings.TrimSpace(p.SourceFile),
		ProductCodePrefix: p.ProductCodePrefix,
		Status:            SessionStatusNew,
		Notes:             p.Notes,
		CreatedBy:         p.CreatedBy,
		Lines:             make([]ReceivingLine, 0, len(lines)),
	}

	for i, in := range lines {
		if err := in.Validate(); err != nil {
			return nil, shared.NewValidationError("Line %d: %s", i+1, err.Error())
		}
		code := partner.DeriveProductCode(p.ProductCodePrefix, in.SupplierSKU)
		s.Lines = append(s.Lines, newReceivingLine(s.ID, i+1, in.InvoiceLine, code, in.Match))
	}

	s.AddDomainEvent(NewSessionCreatedEvent(s))
	return s, nil
}

// TotalLines returns the number of invoice lines
func (s *ReceivingSession) TotalLines() int {
	return len(s.Lines)
}

// LineByNumber returns the line with the given number
func (s *ReceivingSession) LineByNumber(lineNumber int) (*ReceivingLine, error) {
	for i := range s.Lines {
		if s.Lines[i].LineNumber == lineNumber {
			return &s.Lines[i], nil
		}
	}
	return nil, shared.NewNotFoundError("Receiving line")
}

// FindLineByCode returns the first line, in line order, whose ean, supplier SKU or
// product code equals code exactly.
func (s *ReceivingSession) FindLineByCode(code string) (*ReceivingLine, CodeField, bool) {
	for i := range s.Lines {
		if field, ok := s.Lines[i].MatchCode(code); ok {
			return &s.Lines[i], field, true
		}
	}
	return nil, "", false
}

// SortLines orders lines by line number
func (s *ReceivingSession) SortLines() {
	sort.SliceStable(s.Lines, func(i, j int) bool {
		return s.Lines[i].LineNumber < s.Lines[j].LineNumber
	})
}

// Summary projects the current line states
func (s *ReceivingSession) Summary(tally ScanTally) Summary {
	return Summarize(s.Lines, tally)
}

// Pause suspends work on the session without touching lines
func (s *ReceivingSession) Pause() error {
	if s.Status != SessionStatusNew && s.Status != SessionStatusInProgress {
		return shared.NewInvalidTransitionError(s.Status.String(), "pause")
	}
	now := time.Now()
	s.changeStatus(SessionStatusPaused, now)
	s.PausedAt = &now
	s.markModified(now)
	return nil
}

// Resume continues a paused session
func (s *ReceivingSession) Resume() error {
	if s.Status != SessionStatusPaused {
		return shared.NewInvalidTransitionError(s.Status.String(), "resume")
	}
	now := time.Now()
	s.changeStatus(SessionStatusInProgress, now)
	s.PausedAt = nil
	if s.StartedAt == nil {
		s.StartedAt = &now
	}
	s.markModified(now)
	return nil
}

// Cancel aborts the session; a cancelled session accepts nothing further
func (s *ReceivingSession) Cancel(actor, reason string) error {
	if !s.Status.CanTransitionTo(SessionStatusCancelled) {
		return shared.NewInvalidTransitionError(s.Status.String(), "cancel")
	}
	now := time.Now()
	s.changeStatus(SessionStatusCancelled, now)
	s.FinishedAt = &now
	s.FinishedBy = actor
	if reason != "" {
		s.Notes = strings.TrimSpace(strings.TrimSpace(s.Notes) + "\n" + reason)
	}
	s.markModified(now)
	return nil
}

// Finalize completes the session and returns the receipt for the stock ledger.
// Finalizing a completed session fails with ALREADY_FINALIZED.
func (s *ReceivingSession) Finalize(actor string, tally ScanTally) (*Receipt, error) {
	if s.Status == SessionStatusCompleted {
		return nil, shared.NewAlreadyFinalizedError("Receiving session")
	}
	if !s.Status.CanTransitionTo(SessionStatusCompleted) {
		return nil, shared.NewInvalidTransitionError(s.Status.String(), "finalize")
	}

	now := time.Now()
	s.changeStatus(SessionStatusCompleted, now)
	s.FinishedAt = &now
	s.FinishedBy = actor
	s.PausedAt = nil
	s.markModified(now)

	receipt, err := s.Receipt(tally)
	if err != nil {
		return nil, err
	}
	s.AddDomainEvent(NewSessionFinalizedEvent(s, receipt))
	return receipt, nil
}

// Receipt rebuilds the finalized snapshot of a completed session
func (s *ReceivingSession) Receipt(tally ScanTally) (*Receipt, error) {
	if s.Status != SessionStatusCompleted || s.FinishedAt == nil {
		return nil, shared.NewInvalidTransitionError(s.Status.String(), "build a receipt")
	}

	sum := s.Summary(tally)
	receipt := &Receipt{
		SessionID:     s.ID,
		SupplierID:    s.SupplierID,
		WarehouseID:   s.WarehouseID,
		InvoiceNumber: s.InvoiceNumber,
		FinishedAt:    *s.FinishedAt,
		FinishedBy:    s.FinishedBy,
		Items:         make([]ReceivedItem, 0),
		Stats: FinalizeStats{
			TotalLines:       sum.TotalLines,
			ReceivedComplete: sum.Matched,
			ReceivedPartial:  sum.Partial,
			ReceivedOverage:  sum.Overage,
			NotReceived:      sum.Pending,
			TotalScans:       tally.TotalScans,
			UnexpectedScans:  tally.UnexpectedScans,
			TotalOrdered:     sum.TotalOrdered,
			TotalReceived:    sum.TotalReceived,
		},
	}
	for i := range s.Lines {
		line := &s.Lines[i]
		if !line.ReceivedQty.IsPositive() {
			continue
		}
		receipt.Items = append(receipt.Items, ReceivedItem{
			LineNumber:  line.LineNumber,
			ProductID:   line.ProductID,
			ProductCode: line.ProductCode,
			SupplierSKU: line.SupplierSKU,
			EAN:         line.EAN,
			Description: line.Description,
			ReceivedQty: line.ReceivedQty,
			UnitPrice:   line.UnitPrice,
		})
	}
	return receipt, nil
}

// beginWork checks the session accepts scans and edits, moving new to in_progress
func (s *ReceivingSession) beginWork(action, actor string, now time.Time) error {
	if err := s.checkAcceptsWork(action); err != nil {
		return err
	}
	if s.Status == SessionStatusNew {
		s.changeStatus(SessionStatusInProgress, now)
		s.StartedAt = &now
		s.StartedBy = actor
	}
	return nil
}

func (s *ReceivingSession) checkAcceptsWork(action string) error {
	if s.Status == SessionStatusCompleted {
		return shared.NewAlreadyFinalizedError("Receiving session")
	}
	if !s.Status.AcceptsWork() {
		return shared.NewInvalidTransitionError(s.Status.String(), action)
	}
	return nil
}

func (s *ReceivingSession) changeStatus(to SessionStatus, now time.Time) {
	from := s.Status
	s.Status = to
	s.AddDomainEvent(NewSessionStatusChangedEvent(s, from, to, now))
}

// markModified must run exactly once per operation; repositories rely on
// Version-1 being the version that was loaded.
func (s *ReceivingSession) markModified(now time.Time) {
	s.UpdatedAt = now
	s.IncrementVersion()
}
