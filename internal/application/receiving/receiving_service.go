package receiving

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/invoice"
	"github.com/inventory-hub/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceConfig tunes the receiving service
type ServiceConfig struct {
	// ConflictRetries is how many times an operation is retried after an optimistic lock conflict
	ConflictRetries int
	// DefaultOperator is recorded as actor when the caller is anonymous
	DefaultOperator string
}

// DefaultServiceConfig returns the defaults used when no configuration is given
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{ConflictRetries: 3, DefaultOperator: "system"}
}

// ReceivingService runs receiving sessions: creation from invoices, scans and
// edits, and the session lifecycle. Each operation is one transaction.
type ReceivingService struct {
	txScope     TransactionScope
	sessionRepo receiving.ReceivingSessionRepository
	scanRepo    receiving.ScanEventRepository
	processor   *receiving.ScanProcessor
	eventBus    shared.EventPublisher
	config      ServiceConfig
	logger      *zap.Logger
	metrics     *telemetry.ReceivingMetrics
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(
	txScope TransactionScope,
	sessionRepo receiving.ReceivingSessionRepository,
	scanRepo receiving.ScanEventRepository,
	eventBus shared.EventPublisher,
	config ServiceConfig,
	logger *zap.Logger,
) *ReceivingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ConflictRetries < 0 {
		config.ConflictRetries = 0
	}
	if config.DefaultOperator == "" {
		config.DefaultOperator = DefaultServiceConfig().DefaultOperator
	}
	return &ReceivingService{
		txScope:     txScope,
		sessionRepo: sessionRepo,
		scanRepo:    scanRepo,
		processor:   receiving.NewScanProcessor(),
		eventBus:    eventBus,
		config:      config,
		logger:      logger,
	}
}

// SetMetrics sets the receiving metrics collector
func (s *ReceivingService) SetMetrics(m *telemetry.ReceivingMetrics) {
	s.metrics = m
}

// ===================== Creation =====================

// Create opens a session for an invoice. Every line is matched against the
// catalog, EAN first and supplier SKU second; unmatched lines are kept.
func (s *ReceivingService) Create(ctx context.Context, req CreateSessionRequest, actor string) (*SessionResponse, error) {
	lines := make([]receiving.InvoiceLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = l.ToInvoiceLine()
	}
	session, err := s.create(ctx, req.SessionHeader, req.SourceFile, lines, s.actor(actor))
	if err != nil {
		return nil, err
	}
	resp := ToSessionDetailResponse(session, receiving.ScanTally{})
	return &resp, nil
}

// Import parses an uploaded CSV or XLSX invoice and opens a session for it.
// Any row that cannot be parsed rejects the whole file.
func (s *ReceivingService) Import(ctx context.Context, header SessionHeader, filename string, data []byte, actor string) (*ImportResponse, error) {
	parsed, err := invoice.Read(filename, data)
	if err != nil {
		return nil, shared.NewValidationError("Invoice file %s: %s", filename, err.Error())
	}
	if !parsed.Valid() {
		return nil, shared.NewValidationError("Invoice file %s has %d invalid rows: %s",
			filename, parsed.Errors.TotalCount(), parsed.Errors.Error())
	}

	session, err := s.create(ctx, header, filename, parsed.Lines, s.actor(actor))
	if err != nil {
		return nil, err
	}
	return &ImportResponse{
		Session:     ToSessionDetailResponse(session, receiving.ScanTally{}),
		Format:      parsed.Format,
		Encoding:    parsed.Encoding,
		SkippedRows: parsed.SkippedRows,
	}, nil
}

func (s *ReceivingService) create(ctx context.Context, h SessionHeader, sourceFile string, lines []receiving.InvoiceLine, actor string) (*receiving.ReceivingSession, error) {
	var session *receiving.ReceivingSession
	var supplierCode string
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		supplier, err := repos.SupplierRepo().FindByID(ctx, h.SupplierID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Supplier")
			}
			return err
		}
		if !supplier.IsActive() {
			return shared.NewValidationError("Supplier %s is inactive", supplier.Code)
		}
		supplierCode = supplier.Code

		_, err = repos.SessionRepo().FindBySupplierAndInvoice(ctx, h.SupplierID, strings.TrimSpace(h.InvoiceNumber))
		if err == nil {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A receiving session for this invoice already exists")
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		matcher := receiving.NewLineMatcher(repos.IdentifierRepo())
		matched, err := matcher.MatchInvoice(ctx, lines, h.SupplierID)
		if err != nil {
			return err
		}
		created, err := receiving.NewReceivingSession(receiving.SessionParams{
			SupplierID:        h.SupplierID,
			ProductCodePrefix: supplier.ProductCodePrefix,
			WarehouseID:       h.WarehouseID,
			InvoiceNumber:     h.InvoiceNumber,
			InvoiceDate:       h.InvoiceDate,
			SourceFile:        sourceFile,
			Notes:             h.Notes,
			CreatedBy:         actor,
		}, matched)
		if err != nil {
			return err
		}
		if err := repos.SessionRepo().Create(ctx, created); err != nil {
			return err
		}
		session = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	unmatched := 0
	for i := range session.Lines {
		if !session.Lines[i].IsMatched() {
			unmatched++
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSessionCreated(ctx, session.SupplierID.String(), session.TotalLines(), unmatched)
	}
	s.logger.Info("receiving session created",
		zap.String("session_id", session.ID.String()),
		zap.String("supplier", supplierCode),
		zap.String("invoice_number", session.InvoiceNumber),
		zap.Int("lines", session.TotalLines()),
		zap.Int("unmatched", unmatched),
	)
	s.publishEvents(ctx, session)
	return session, nil
}

// ===================== Scans and edits =====================

// Scan applies one physical scan to the session
func (s *ReceivingService) Scan(ctx context.Context, sessionID uuid.UUID, req ScanRequest, actor string) (*LineChangeResponse, error) {
	qty := decimal.NewFromInt(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	actor = s.actor(actor)

	var outcome *receiving.ScanOutcome
	var tally receiving.ScanTally
	session, err := s.mutate(ctx, "scan", sessionID, func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		productID, err := receiving.NewLineMatcher(repos.IdentifierRepo()).ResolveScannedCode(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		outcome, err = s.processor.Scan(session, receiving.ScanInput{
			Code:      req.Code,
			Quantity:  qty,
			ProductID: productID,
			DeviceID:  req.DeviceID,
			Actor:     actor,
		})
		if err != nil {
			return nil, err
		}
		tally, err = repos.ScanEventRepo().Tally(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		tally = tally.Add(receiving.TallyScans([]receiving.ScanEvent{outcome.Event}))
		return []receiving.ScanEvent{outcome.Event}, nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("session_id", sessionID.String()),
		zap.String("code", outcome.Event.ScannedCode),
		zap.String("result", outcome.Result().String()),
	}
	if outcome.Line != nil {
		fields = append(fields, zap.Int("line_number", outcome.Line.LineNumber))
	}
	s.logger.Info("scan recorded", fields...)
	return s.lineChange(ctx, session, outcome, tally), nil
}

// SetQuantity overwrites the received quantity of one line
func (s *ReceivingService) SetQuantity(ctx context.Context, sessionID uuid.UUID, lineNumber int, req SetQuantityRequest, actor string) (*LineChangeResponse, error) {
	actor = s.actor(actor)
	var outcome *receiving.ScanOutcome
	var tally receiving.ScanTally
	session, err := s.mutate(ctx, "set_quantity", sessionID, func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		var err error
		outcome, err = s.processor.SetQuantity(session, lineNumber, req.ReceivedQty, actor, req.Note)
		if err != nil {
			return nil, err
		}
		tally, err = repos.ScanEventRepo().Tally(ctx, sessionID)
		return []receiving.ScanEvent{outcome.Event}, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("line quantity set",
		zap.String("session_id", sessionID.String()),
		zap.Int("line_number", lineNumber),
		zap.String("received_qty", outcome.Line.ReceivedQty.String()),
		zap.String("result", outcome.Result().String()),
	)
	return s.lineChange(ctx, session, outcome, tally), nil
}

// AssignProduct links a line to a catalog product by hand
func (s *ReceivingService) AssignProduct(ctx context.Context, sessionID uuid.UUID, lineNumber int, req AssignProductRequest, actor string) (*LineChangeResponse, error) {
	actor = s.actor(actor)
	var outcome *receiving.ScanOutcome
	var tally receiving.ScanTally
	session, err := s.mutate(ctx, "assign_product", sessionID, func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		if _, err := repos.ProductRepo().FindByID(ctx, req.ProductID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Product")
			}
			return nil, err
		}
		var err error
		outcome, err = s.processor.AssignProduct(session, lineNumber, req.ProductID, actor)
		if err != nil {
			return nil, err
		}
		tally, err = repos.ScanEventRepo().Tally(ctx, sessionID)
		return []receiving.ScanEvent{outcome.Event}, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product assigned to line",
		zap.String("session_id", sessionID.String()),
		zap.Int("line_number", lineNumber),
		zap.String("product_id", req.ProductID.String()),
	)
	return s.lineChange(ctx, session, outcome, tally), nil
}

// AcceptAll sets received to ordered in bulk, one audit entry per touched line
func (s *ReceivingService) AcceptAll(ctx context.Context, sessionID uuid.UUID, req AcceptAllRequest, actor string) (*BulkChangeResponse, error) {
	onlyPending := true
	if req.OnlyPending != nil {
		onlyPending = *req.OnlyPending
	}
	actor = s.actor(actor)

	var changed int
	var tally receiving.ScanTally
	session, err := s.mutate(ctx, "accept_all", sessionID, func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		events, err := s.processor.AcceptAll(session, onlyPending, actor)
		if err != nil {
			return nil, err
		}
		changed = len(events)
		tally, err = repos.ScanEventRepo().Tally(ctx, sessionID)
		return events, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lines accepted",
		zap.String("session_id", sessionID.String()),
		zap.Bool("only_pending", onlyPending),
		zap.Int("lines", changed),
	)
	s.recordScan(ctx, receiving.ScanEventKindBulkAccept.String(), receiving.ScanResultMatched.String())
	return &BulkChangeResponse{LinesChanged: changed, Status: session.Status.String(), Summary: session.Summary(tally)}, nil
}

// ResetAll sets every line back to zero received with a single audit entry
func (s *ReceivingService) ResetAll(ctx context.Context, sessionID uuid.UUID, req ResetRequest, actor string) (*BulkChangeResponse, error) {
	actor = s.actor(actor)
	var tally receiving.ScanTally
	session, err := s.mutate(ctx, "reset", sessionID, func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		event, err := s.processor.ResetAll(session, actor, req.Note)
		if err != nil {
			return nil, err
		}
		tally, err = repos.ScanEventRepo().Tally(ctx, sessionID)
		return []receiving.ScanEvent{*event}, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session reset", zap.String("session_id", sessionID.String()))
	s.recordScan(ctx, receiving.ScanEventKindBulkReset.String(), receiving.ScanResultReset.String())
	return &BulkChangeResponse{LinesChanged: session.TotalLines(), Status: session.Status.String(), Summary: session.Summary(tally)}, nil
}

// ===================== Lifecycle =====================

// Pause suspends work on a session
func (s *ReceivingService) Pause(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	return s.transition(ctx, "pause", sessionID, func(session *receiving.ReceivingSession) error {
		return session.Pause()
	})
}

// Resume continues a paused session
func (s *ReceivingService) Resume(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	return s.transition(ctx, "resume", sessionID, func(session *receiving.ReceivingSession) error {
		return session.Resume()
	})
}

// Cancel aborts a session
func (s *ReceivingService) Cancel(ctx context.Context, sessionID uuid.UUID, req CancelRequest, actor string) (*SessionResponse, error) {
	actor = s.actor(actor)
	return s.transition(ctx, "cancel", sessionID, func(session *receiving.ReceivingSession) error {
		return session.Cancel(actor, req.Reason)
	})
}

func (s *ReceivingService) transition(ctx context.Context, op string, sessionID uuid.UUID, fn func(*receiving.ReceivingSession) error) (*SessionResponse, error) {
	session, err := s.mutate(ctx, op, sessionID, func(_ TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		return nil, fn(session)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("receiving session "+op,
		zap.String("session_id", sessionID.String()),
		zap.String("status", session.Status.String()),
	)
	resp := ToSessionResponse(session)
	return &resp, nil
}

// Finalize completes the session and returns the receipt handed to the stock ledger.
// The ledger is fed after commit through the ReceivingSessionFinalized event.
func (s *ReceivingService) Finalize(ctx context.Context, sessionID uuid.UUID, actor string) (*FinalizeResponse, error) {
	actor = s.actor(actor)
	var receipt *receiving.Receipt
	var tally receiving.ScanTally
	session, err := s.mutate(ctx, "finalize", sessionID, func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error) {
		var err error
		tally, err = repos.ScanEventRepo().Tally(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		receipt, err = session.Finalize(actor, tally)
		return nil, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("receiving session finalized",
		zap.String("session_id", sessionID.String()),
		zap.Int("received_items", len(receipt.Items)),
		zap.Int("not_received", receipt.Stats.NotReceived),
	)
	if s.metrics != nil {
		s.metrics.RecordFinalized(ctx, session.SupplierID.String())
	}
	return &FinalizeResponse{
		Session: ToSessionDetailResponse(session, tally),
		Receipt: *receipt,
	}, nil
}

// Delete removes a session that never started or was cancelled
func (s *ReceivingService) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		session, err := repos.SessionRepo().FindByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != receiving.SessionStatusNew && session.Status != receiving.SessionStatusCancelled {
			return shared.NewInvalidTransitionError(session.Status.String(), "delete session")
		}
		return repos.SessionRepo().Delete(ctx, sessionID)
	})
}

// ===================== Queries =====================

// Get returns a session with its lines and summary
func (s *ReceivingService) Get(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	session, tally, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := ToSessionDetailResponse(session, tally)
	return &resp, nil
}

// Summary recomputes the session summary from stored lines and scan history
func (s *ReceivingService) Summary(ctx context.Context, sessionID uuid.UUID) (*receiving.Summary, error) {
	session, tally, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sum := session.Summary(tally)
	return &sum, nil
}

// Receipt rebuilds the receipt of a completed session
func (s *ReceivingService) Receipt(ctx context.Context, sessionID uuid.UUID) (*receiving.Receipt, error) {
	session, tally, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Receipt(tally)
}

// List retrieves a page of sessions
func (s *ReceivingService) List(ctx context.Context, filter SessionListFilter) ([]SessionResponse, int64, error) {
	domainFilter := receiving.SessionFilter{
		Filter:     shared.DefaultFilter().WithPage(filter.Page, filter.PageSize),
		SupplierID: filter.SupplierID,
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := receiving.SessionStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Unknown session status: %s", filter.Status)
		}
		domainFilter.Status = &status
	}

	sessions, total, err := s.sessionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]SessionResponse, len(sessions))
	for i := range sessions {
		items[i] = ToSessionResponse(&sessions[i])
	}
	return items, total, nil
}

// Events returns a page of the session's audit trail, oldest first
func (s *ReceivingService) Events(ctx context.Context, sessionID uuid.UUID, filter EventListFilter) ([]ScanEventResponse, int64, error) {
	if _, err := s.sessionRepo.FindByID(ctx, sessionID); err != nil {
		return nil, 0, err
	}
	domainFilter := shared.Filter{Page: 1, PageSize: 100, OrderBy: "scanned_at", OrderDir: "asc"}.
		WithPage(filter.Page, filter.PageSize)

	events, total, err := s.scanRepo.FindBySession(ctx, sessionID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ScanEventResponse, len(events))
	for i := range events {
		items[i] = ToScanEventResponse(&events[i])
	}
	return items, total, nil
}

// ===================== Helpers =====================

type mutation func(repos TransactionalRepositories, session *receiving.ReceivingSession) ([]receiving.ScanEvent, error)

// mutate loads the session for update, applies fn, then saves the session with
// its lines and appends the audit events in the same transaction. A version
// conflict reruns the whole transaction up to ConflictRetries times.
func (s *ReceivingService) mutate(ctx context.Context, op string, sessionID uuid.UUID, fn mutation) (_ *receiving.ReceivingSession, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receiving", op, telemetry.AttrSessionID.String(sessionID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	var session *receiving.ReceivingSession

	for attempt := 0; attempt <= s.config.ConflictRetries; attempt++ {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			loaded, err := repos.SessionRepo().FindByIDForUpdate(ctx, sessionID)
			if err != nil {
				return err
			}
			events, err := fn(repos, loaded)
			if err != nil {
				return err
			}
			if err := repos.SessionRepo().SaveWithLines(ctx, loaded); err != nil {
				return err
			}
			if len(events) > 0 {
				if err := repos.ScanEventRepo().Append(ctx, events...); err != nil {
					return err
				}
			}
			session = loaded
			return nil
		})
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
		if s.metrics != nil {
			s.metrics.RecordConflict(ctx, op)
		}
		s.logger.Warn("receiving session modified concurrently, retrying",
			zap.String("session_id", sessionID.String()),
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, session)
	return session, nil
}

func (s *ReceivingService) load(ctx context.Context, sessionID uuid.UUID) (*receiving.ReceivingSession, receiving.ScanTally, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, receiving.ScanTally{}, err
	}
	tally, err := s.scanRepo.Tally(ctx, sessionID)
	if err != nil {
		return nil, receiving.ScanTally{}, err
	}
	return session, tally, nil
}

func (s *ReceivingService) lineChange(ctx context.Context, session *receiving.ReceivingSession, outcome *receiving.ScanOutcome, tally receiving.ScanTally) *LineChangeResponse {
	s.recordScan(ctx, outcome.Event.Kind.String(), outcome.Result().String())
	resp := &LineChangeResponse{
		Result:  outcome.Result().String(),
		Event:   ToScanEventResponse(&outcome.Event),
		Status:  session.Status.String(),
		Summary: session.Summary(tally),
	}
	if outcome.Line != nil {
		line := ToLineResponse(outcome.Line)
		resp.Line = &line
	}
	return resp
}

func (s *ReceivingService) recordScan(ctx context.Context, kind, result string) {
	if s.metrics != nil {
		s.metrics.RecordScan(ctx, kind, result)
	}
}

func (s *ReceivingService) actor(actor string) string {
	if actor == "" {
		return s.config.DefaultOperator
	}
	return actor
}

func (s *ReceivingService) publishEvents(ctx context.Context, session *receiving.ReceivingSession) {
	if s.eventBus == nil {
		session.ClearDomainEvents()
		return
	}
	for _, event := range session.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish receiving event",
				zap.String("session_id", session.ID.String()),
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	session.ClearDomainEvents()
}
