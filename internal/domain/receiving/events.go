package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeSessionCreated       = "ReceivingSessionCreated"
	EventTypeSessionStatusChanged = "ReceivingSessionStatusChanged"
	EventTypeSessionFinalized     = "ReceivingSessionFinalized"
)

// SessionCreatedEvent is published when a session is created from an invoice
type SessionCreatedEvent struct {
	shared.BaseDomainEvent
	SessionID     uuid.UUID `json:"session_id"`
	SupplierID    uuid.UUID `json:"supplier_id"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalLines    int       `json:"total_lines"`
	MatchedLines  int       `json:"matched_lines"`
}

// NewSessionCreatedEvent creates a new SessionCreatedEvent
func NewSessionCreatedEvent(s *ReceivingSession) *SessionCreatedEvent {
	matched := 0
	for i := range s.Lines {
		if s.Lines[i].IsMatched() {
			matched++
		}
	}
	return &SessionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionCreated, AggregateTypeReceivingSession, s.ID),
		SessionID:       s.ID,
		SupplierID:      s.SupplierID,
		InvoiceNumber:   s.InvoiceNumber,
		TotalLines:      len(s.Lines),
		MatchedLines:    matched,
	}
}

// SessionStatusChangedEvent is published on every lifecycle transition
type SessionStatusChangedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID     `json:"session_id"`
	From      SessionStatus `json:"from"`
	To        SessionStatus `json:"to"`
	ChangedAt time.Time     `json:"changed_at"`
}

// NewSessionStatusChangedEvent creates a new SessionStatusChangedEvent
func NewSessionStatusChangedEvent(s *ReceivingSession, from, to SessionStatus, at time.Time) *SessionStatusChangedEvent {
	return &SessionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionStatusChanged, AggregateTypeReceivingSession, s.ID),
		SessionID:       s.ID,
		From:            from,
		To:              to,
		ChangedAt:       at,
	}
}

// SessionFinalizedEvent carries the receipt to the stock ledger
type SessionFinalizedEvent struct {
	shared.BaseDomainEvent
	Receipt Receipt `json:"receipt"`
}

// NewSessionFinalizedEvent creates a new SessionFinalizedEvent
func NewSessionFinalizedEvent(s *ReceivingSession, receipt *Receipt) *SessionFinalizedEvent {
	return &SessionFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionFinalized, AggregateTypeReceivingSession, s.ID),
		Receipt:         *receipt,
	}
}
