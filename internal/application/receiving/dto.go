package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one parsed invoice line
type InvoiceLineRequest struct {
	EAN         string           `json:"ean" binding:"max=64"`
	SupplierSKU string           `json:"supplier_sku" binding:"max=100"`
	Description string           `json:"description" binding:"max=500"`
	OrderedQty  decimal.Decimal  `json:"ordered_qty" binding:"gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ToInvoiceLine converts the request into a domain invoice line
func (r InvoiceLineRequest) ToInvoiceLine() receiving.InvoiceLine {
	return receiving.InvoiceLine{
		EAN:         r.EAN,
		SupplierSKU: r.SupplierSKU,
		Description: r.Description,
		OrderedQty:  r.OrderedQty,
		UnitPrice:   r.UnitPrice,
	}
}

// SessionHeader carries the session fields shared by JSON creation and file import
type SessionHeader struct {
	SupplierID    uuid.UUID  `json:"supplier_id" form:"supplier_id" binding:"required"`
	InvoiceNumber string     `json:"invoice_number" form:"invoice_number" binding:"required,min=1,max=100"`
	WarehouseID   *uuid.UUID `json:"warehouse_id" form:"warehouse_id"`
	InvoiceDate   *time.Time `json:"invoice_date" form:"invoice_date" time_format:"2006-01-02"`
	Notes         string     `json:"notes" form:"notes" binding:"max=2000"`
}

// CreateSessionRequest creates a session from already parsed invoice lines
type CreateSessionRequest struct {
	SessionHeader
	SourceFile string               `json:"source_file" binding:"max=255"`
	Lines      []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ScanRequest is one physical scan. Quantity defaults to 1.
type ScanRequest struct {
	Code     string           `json:"code" binding:"required,max=100"`
	Quantity *decimal.Decimal `json:"quantity"`
	DeviceID string           `json:"device_id" binding:"max=100"`
}

// SetQuantityRequest overwrites a line's received quantity
type SetQuantityRequest struct {
	ReceivedQty decimal.Decimal `json:"received_qty" binding:"gte=0"`
	Note        string          `json:"note" binding:"max=500"`
}

// AssignProductRequest links a line to a product by hand
type AssignProductRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// AcceptAllRequest accepts ordered quantities in bulk. OnlyPending defaults to true.
type AcceptAllRequest struct {
	OnlyPending *bool `json:"only_pending"`
}

// ResetRequest resets every line to zero received
type ResetRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// CancelRequest aborts a session
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SessionListFilter represents filter options for session list
type SessionListFilter struct {
	// SupplierID comes from the supplier_id query parameter, parsed by the handler
	SupplierID *uuid.UUID `form:"-"`
	Status     string     `form:"status" binding:"omitempty,oneof=new in_progress paused completed cancelled"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// EventListFilter pages through a session's audit trail
type EventListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// LineResponse represents a receiving line in API responses
type LineResponse struct {
	ID          uuid.UUID        `json:"id"`
	LineNumber  int              `json:"line_number"`
	ProductID   *uuid.UUID       `json:"product_id"`
	SupplierSKU string           `json:"supplier_sku"`
	EAN         string           `json:"ean"`
	ProductCode string           `json:"product_code"`
	Description string           `json:"description"`
	OrderedQty  decimal.Decimal  `json:"ordered_qty"`
	ReceivedQty decimal.Decimal  `json:"received_qty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Status      string           `json:"status"`
	MatchMethod string           `json:"match_method"`
}

// ToLineResponse converts a domain line
func ToLineResponse(l *receiving.ReceivingLine) LineResponse {
	return LineResponse{
		ID:          l.ID,
		LineNumber:  l.LineNumber,
		ProductID:   l.ProductID,
		SupplierSKU: l.SupplierSKU,
		EAN:         l.EAN,
		ProductCode: l.ProductCode,
		Description: l.Description,
		OrderedQty:  l.OrderedQty,
		ReceivedQty: l.ReceivedQty,
		UnitPrice:   l.UnitPrice,
		Status:      l.Status.String(),
		MatchMethod: l.MatchMethod.String(),
	}
}

// SessionResponse represents a receiving session in API responses.
// Lines and Summary are filled for detail views only.
type SessionResponse struct {
	ID                uuid.UUID          `json:"id"`
	SupplierID        uuid.UUID          `json:"supplier_id"`
	WarehouseID       *uuid.UUID         `json:"warehouse_id,omitempty"`
	InvoiceNumber     string             `json:"invoice_number"`
	InvoiceDate       *time.Time         `json:"invoice_date,omitempty"`
	SourceFile        string             `json:"source_file,omitempty"`
	ProductCodePrefix string             `json:"product_code_prefix"`
	Status            string             `json:"status"`
	Notes             string             `json:"notes,omitempty"`
	TotalLines        int                `json:"total_lines"`
	CreatedBy         string             `json:"created_by,omitempty"`
	StartedBy         string             `json:"started_by,omitempty"`
	FinishedBy        string             `json:"finished_by,omitempty"`
	StartedAt         *time.Time         `json:"started_at,omitempty"`
	PausedAt          *time.Time         `json:"paused_at,omitempty"`
	FinishedAt        *time.Time         `json:"finished_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int                `json:"version"`
	Lines             []LineResponse     `json:"lines,omitempty"`
	Summary           *receiving.Summary `json:"summary,omitempty"`
}

// ToSessionResponse converts a session without its lines
func ToSessionResponse(s *receiving.ReceivingSession) SessionResponse {
	return SessionResponse{
		ID:                s.ID,
		SupplierID:        s.SupplierID,
		WarehouseID:       s.WarehouseID,
		InvoiceNumber:     s.InvoiceNumber,
		InvoiceDate:       s.InvoiceDate,
		SourceFile:        s.SourceFile,
		ProductCodePrefix: s.ProductCodePrefix,
		Status:            s.Status.String(),
		Notes:             s.Notes,
		TotalLines:        s.TotalLines(),
		CreatedBy:         s.CreatedBy,
		StartedBy:         s.StartedBy,
		FinishedBy:        s.FinishedBy,
		StartedAt:         s.StartedAt,
		PausedAt:          s.PausedAt,
		FinishedAt:        s.FinishedAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

// ToSessionDetailResponse converts a session with lines and summary
func ToSessionDetailResponse(s *receiving.ReceivingSession, tally receiving.ScanTally) SessionResponse {
	resp := ToSessionResponse(s)
	resp.Lines = make([]LineResponse, len(s.Lines))
	for i := range s.Lines {
		resp.Lines[i] = ToLineResponse(&s.Lines[i])
	}
	sum := s.Summary(tally)
	resp.Summary = &sum
	return resp
}

// ScanEventResponse represents an audit entry
type ScanEventResponse struct {
	ID              uuid.UUID       `json:"id"`
	LineID          *uuid.UUID      `json:"line_id"`
	LineNumber      *int            `json:"line_number,omitempty"`
	Kind            string          `json:"kind"`
	ScannedCode     string          `json:"scanned_code,omitempty"`
	ScannedCodeType string          `json:"scanned_code_type,omitempty"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	MatchedBy       string          `json:"match_method,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	PreviousQty     decimal.Decimal `json:"previous_qty"`
	NewQty          decimal.Decimal `json:"new_qty"`
	Result          string          `json:"status_result"`
	Note            string          `json:"note,omitempty"`
	DeviceID        string          `json:"device_id,omitempty"`
	ScannedBy       string          `json:"scanned_by"`
	ScannedAt       time.Time       `json:"scanned_at"`
}

// ToScanEventResponse converts a domain scan event
func ToScanEventResponse(e *receiving.ScanEvent) ScanEventResponse {
	return ScanEventResponse{
		ID:              e.ID,
		LineID:          e.LineID,
		LineNumber:      e.LineNumber,
		Kind:            e.Kind.String(),
		ScannedCode:     e.ScannedCode,
		ScannedCodeType: e.ScannedCodeType.String(),
		ProductID:       e.ProductID,
		MatchedBy:       string(e.MatchedBy),
		Quantity:        e.Quantity,
		PreviousQty:     e.PreviousQty,
		NewQty:          e.NewQty,
		Result:          e.Result.String(),
		Note:            e.Note,
		DeviceID:        e.DeviceID,
		ScannedBy:       e.ScannedBy,
		ScannedAt:       e.ScannedAt,
	}
}

// LineChangeResponse is returned by scan and single-line edits
type LineChangeResponse struct {
	Result  string            `json:"result"`
	Line    *LineResponse     `json:"line"`
	Event   ScanEventResponse `json:"event"`
	Status  string            `json:"session_status"`
	Summary receiving.Summary `json:"summary"`
}

// BulkChangeResponse is returned by accept-all and reset
type BulkChangeResponse struct {
	LinesChanged int               `json:"lines_changed"`
	Status       string            `json:"session_status"`
	Summary      receiving.Summary `json:"summary"`
}

// FinalizeResponse carries the completed session and its receipt
type FinalizeResponse struct {
	Session SessionResponse   `json:"session"`
	Receipt receiving.Receipt `json:"receipt"`
}

// ImportResponse is the created session plus parsing diagnostics
type ImportResponse struct {
	Session     SessionResponse `json:"session"`
	Format      string          `json:"format"`
	Encoding    string          `json:"encoding"`
	SkippedRows int             `json:"skipped_rows"`
}
