package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/shopspring/decimal"
)

// ReceivingSessionModel is the persistence model for the ReceivingSession aggregate root.
// Lines are stored in receiving_lines and loaded separately.
type ReceivingSessionModel struct {
	AggregateModel
	SupplierID        uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_receiving_sessions_invoice,priority:1"`
	WarehouseID       *uuid.UUID              `gorm:"type:uuid"`
	InvoiceNumber     string                  `gorm:"type:varchar(100);not null;uniqueIndex:idx_receiving_sessions_invoice,priority:2"`
	InvoiceDate       *time.Time              `gorm:"type:date"`
	SourceFile        string                  `gorm:"type:varchar(255)"`
	ProductCodePrefix string                  `gorm:"type:varchar(20);not null;default:''"`
	Status            receiving.SessionStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	Notes             string                  `gorm:"type:text"`
	CreatedBy         string                  `gorm:"type:varchar(100)"`
	StartedBy         string                  `gorm:"type:varchar(100)"`
	FinishedBy        string                  `gorm:"type:varchar(100)"`
	StartedAt         *time.Time
	PausedAt          *time.Time
	FinishedAt        *time.Time
}

// TableName returns the table name for GORM
func (ReceivingSessionModel) TableName() string {
	return "receiving_sessions"
}

// ToDomain converts the persistence model to a domain ReceivingSession with the given lines.
func (m *ReceivingSessionModel) ToDomain(lines []ReceivingLineModel) *receiving.ReceivingSession {
	s := &receiving.ReceivingSession{
		BaseAggregateRoot: m.Root(),
		SupplierID:        m.SupplierID,
		WarehouseID:       m.WarehouseID,
		InvoiceNumber:     m.InvoiceNumber,
		InvoiceDate:       m.InvoiceDate,
		SourceFile:        m.SourceFile,
		ProductCodePrefix: m.ProductCodePrefix,
		Status:            m.Status,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		StartedBy:         m.StartedBy,
		FinishedBy:        m.FinishedBy,
		StartedAt:         m.StartedAt,
		PausedAt:          m.PausedAt,
		FinishedAt:        m.FinishedAt,
		Lines:             make([]receiving.ReceivingLine, len(lines)),
	}
	for i := range lines {
		s.Lines[i] = lines[i].ToDomain()
	}
	s.SortLines()
	return s
}

// FromDomain populates the persistence model from a domain ReceivingSession.
func (m *ReceivingSessionModel) FromDomain(s *receiving.ReceivingSession) {
	m.SetRoot(s.BaseAggregateRoot)
	m.SupplierID = s.SupplierID
	m.WarehouseID = s.WarehouseID
	m.InvoiceNumber = s.InvoiceNumber
	m.InvoiceDate = s.InvoiceDate
	m.SourceFile = s.SourceFile
	m.ProductCodePrefix = s.ProductCodePrefix
	m.Status = s.Status
	m.Notes = s.Notes
	m.CreatedBy = s.CreatedBy
	m.StartedBy = s.StartedBy
	m.FinishedBy = s.FinishedBy
	m.StartedAt = s.StartedAt
	m.PausedAt = s.PausedAt
	m.FinishedAt = s.FinishedAt
}

// ReceivingSessionModelFromDomain creates a new persistence model from a domain ReceivingSession.
func ReceivingSessionModelFromDomain(s *receiving.ReceivingSession) *ReceivingSessionModel {
	m := &ReceivingSessionModel{}
	m.FromDomain(s)
	return m
}

// ReceivingLineModel is the persistence model for ReceivingLine.
type ReceivingLineModel struct {
	BaseModel
	SessionID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_receiving_lines_number,priority:1"`
	LineNumber  int                   `gorm:"not null;uniqueIndex:idx_receiving_lines_number,priority:2"`
	ProductID   *uuid.UUID            `gorm:"type:uuid;index"`
	SupplierSKU string                `gorm:"type:varchar(100)"`
	EAN         string                `gorm:"type:varchar(64)"`
	ProductCode string                `gorm:"type:varchar(150)"`
	Description string                `gorm:"type:varchar(500)"`
	OrderedQty  decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ReceivedQty decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	Status      receiving.LineStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	MatchMethod receiving.MatchMethod `gorm:"type:varchar(20);not null;default:'none'"`
}

// TableName returns the table name for GORM
func (ReceivingLineModel) TableName() string {
	return "receiving_lines"
}

// ToDomain converts the persistence model to a domain ReceivingLine.
func (m *ReceivingLineModel) ToDomain() receiving.ReceivingLine {
	return receiving.ReceivingLine{
		BaseEntity:  m.Entity(),
		SessionID:   m.SessionID,
		LineNumber:  m.LineNumber,
		ProductID:   m.ProductID,
		SupplierSKU: m.SupplierSKU,
		EAN:         m.EAN,
		ProductCode: m.ProductCode,
		Description: m.Description,
		OrderedQty:  m.OrderedQty,
		ReceivedQty: m.ReceivedQty,
		UnitPrice:   m.UnitPrice,
		Status:      m.Status,
		MatchMethod: m.MatchMethod,
	}
}

// ReceivingLineModelFromDomain creates a new persistence model from a domain ReceivingLine.
func ReceivingLineModelFromDomain(l *receiving.ReceivingLine) *ReceivingLineModel {
	m := &ReceivingLineModel{
		SessionID:   l.SessionID,
		LineNumber:  l.LineNumber,
		ProductID:   l.ProductID,
		SupplierSKU: l.SupplierSKU,
		EAN:         l.EAN,
		ProductCode: l.ProductCode,
		Description: l.Description,
		OrderedQty:  l.OrderedQty,
		ReceivedQty: l.ReceivedQty,
		UnitPrice:   l.UnitPrice,
		Status:      l.Status,
		MatchMethod: l.MatchMethod,
	}
	m.SetEntity(l.BaseEntity)
	return m
}

// ScanEventModel is the persistence model for the append-only scan log.
type ScanEventModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SessionID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_scan_events_session,priority:1"`
	LineID          *uuid.UUID `gorm:"type:uuid"`
	LineNumber      *int
	Kind            receiving.ScanEventKind `gorm:"type:varchar(20);not null"`
	ScannedCode     string                  `gorm:"type:varchar(200)"`
	ScannedCodeType catalog.IdentifierType  `gorm:"type:varchar(30)"`
	ProductID       *uuid.UUID              `gorm:"type:uuid"`
	MatchedBy       receiving.CodeField     `gorm:"type:varchar(20)"`
	Quantity        decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	PreviousQty     decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	NewQty          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Result          receiving.ScanResult    `gorm:"type:varchar(20);not null"`
	Note            string                  `gorm:"type:text"`
	DeviceID        string                  `gorm:"type:varchar(100)"`
	ScannedBy       string                  `gorm:"type:varchar(100)"`
	ScannedAt       time.Time               `gorm:"not null;index:idx_scan_events_session,priority:2"`
}

// TableName returns the table name for GORM
func (ScanEventModel) TableName() string {
	return "scan_events"
}

// ToDomain converts the persistence model to a domain ScanEvent.
func (m *ScanEventModel) ToDomain() receiving.ScanEvent {
	return receiving.ScanEvent{
		ID:              m.ID,
		SessionID:       m.SessionID,
		LineID:          m.LineID,
		LineNumber:      m.LineNumber,
		Kind:            m.Kind,
		ScannedCode:     m.ScannedCode,
		ScannedCodeType: m.ScannedCodeType,
		ProductID:       m.ProductID,
		MatchedBy:       m.MatchedBy,
		Quantity:        m.Quantity,
		PreviousQty:     m.PreviousQty,
		NewQty:          m.NewQty,
		Result:          m.Result,
		Note:            m.Note,
		DeviceID:        m.DeviceID,
		ScannedBy:       m.ScannedBy,
		ScannedAt:       m.ScannedAt,
	}
}

// ScanEventModelFromDomain creates a new persistence model from a domain ScanEvent.
func ScanEventModelFromDomain(e *receiving.ScanEvent) *ScanEventModel {
	return &ScanEventModel{
		ID:              e.ID,
		SessionID:       e.SessionID,
		LineID:          e.LineID,
		LineNumber:      e.LineNumber,
		Kind:            e.Kind,
		ScannedCode:     e.ScannedCode,
		ScannedCodeType: e.ScannedCodeType,
		ProductID:       e.ProductID,
		MatchedBy:       e.MatchedBy,
		Quantity:        e.Quantity,
		PreviousQty:     e.PreviousQty,
		NewQty:          e.NewQty,
		Result:          e.Result,
		Note:            e.Note,
		DeviceID:        e.DeviceID,
		ScannedBy:       e.ScannedBy,
		ScannedAt:       e.ScannedAt,
	}
}
