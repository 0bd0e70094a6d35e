package receiving

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/shared"
)

// SessionFilter narrows session listings
type SessionFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *SessionStatus
}

// ReceivingSessionRepository persists sessions together with their lines
type ReceivingSessionRepository interface {
	// FindByID loads a session with its lines in line order
	FindByID(ctx context.Context, id uuid.UUID) (*ReceivingSession, error)

	// FindByIDForUpdate loads a session and locks its row for the rest of the transaction
	// where the store supports row locks
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ReceivingSession, error)

	// FindBySupplierAndInvoice finds the session of an invoice
	FindBySupplierAndInvoice(ctx context.Context, supplierID uuid.UUID, invoiceNumber string) (*ReceivingSession, error)

	// FindAll lists sessions with their lines, newest first, with the total count
	FindAll(ctx context.Context, filter SessionFilter) ([]ReceivingSession, int64, error)

	// Create inserts a new session and all of its lines
	Create(ctx context.Context, session *ReceivingSession) error

	// SaveWithLines updates the session and its lines if the stored version is
	// session.Version-1; otherwise it returns shared.ErrConcurrencyConflict
	SaveWithLines(ctx context.Context, session *ReceivingSession) error

	// Delete removes the session, its lines and its scan events
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScanEventRepository is the append-only audit trail of a session
type ScanEventRepository interface {
	// Append stores new events
	Append(ctx context.Context, events ...ScanEvent) error

	// FindBySession lists a session's events, oldest first
	FindBySession(ctx context.Context, sessionID uuid.UUID, filter shared.Filter) ([]ScanEvent, int64, error)

	// Tally counts scans and unexpected scans of a session
	Tally(ctx context.Context, sessionID uuid.UUID) (ScanTally, error)
}
