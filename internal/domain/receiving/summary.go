package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary is a projection over a session's lines plus its unexpected scan count.
// It is never stored.
type Summary struct {
	TotalLines    int             `json:"total_lines"`
	Matched       int             `json:"matched"`
	Partial       int             `json:"partial"`
	Pending       int             `json:"pending"`
	Overage       int             `json:"overage"`
	Unexpected    int             `json:"unexpected"`
	TotalOrdered  decimal.Decimal `json:"total_ordered"`
	TotalReceived decimal.Decimal `json:"total_received"`
}

// Summarize computes the summary of lines with the unexpected count from scan history
func Summarize(lines []ReceivingLine, tally ScanTally) Summary {
	sum := Summary{
		TotalLines:    len(lines),
		Unexpected:    tally.UnexpectedScans,
		TotalOrdered:  decimal.Zero,
		TotalReceived: decimal.Zero,
	}
	for i := range lines {
		switch StatusFor(lines[i].ReceivedQty, lines[i].OrderedQty) {
		case LineStatusMatched:
			sum.Matched++
		case LineStatusPartial:
			sum.Partial++
		case LineStatusOverage:
			sum.Overage++
		default:
			sum.Pending++
		}
		sum.TotalOrdered = sum.TotalOrdered.Add(lines[i].OrderedQty)
		sum.TotalReceived = sum.TotalReceived.Add(lines[i].ReceivedQty)
	}
	return sum
}

// FinalizeStats is the stats block handed downstream with a receipt
type FinalizeStats struct {
	TotalLines       int             `json:"total_lines"`
	ReceivedComplete int             `json:"received_complete"`
	ReceivedPartial  int             `json:"received_partial"`
	ReceivedOverage  int             `json:"received_overage"`
	NotReceived      int             `json:"not_received"`
	TotalScans       int             `json:"total_scans"`
	UnexpectedScans  int             `json:"unexpected_scans"`
	TotalOrdered     decimal.Decimal `json:"total_ordered"`
	TotalReceived    decimal.Decimal `json:"total_received"`
}

// ReceivedItem is one line with a positive received quantity
type ReceivedItem struct {
	LineNumber  int              `json:"line_number"`
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	ProductCode string           `json:"product_code"`
	SupplierSKU string           `json:"supplier_sku"`
	EAN         string           `json:"ean"`
	Description string           `json:"description"`
	ReceivedQty decimal.Decimal  `json:"received_qty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// Receipt is the finalized snapshot consumed by the stock ledger
type Receipt struct {
	SessionID     uuid.UUID      `json:"session_id"`
	SupplierID    uuid.UUID      `json:"supplier_id"`
	WarehouseID   *uuid.UUID     `json:"warehouse_id,omitempty"`
	InvoiceNumber string         `json:"invoice_number"`
	FinishedAt    time.Time      `json:"finished_at"`
	FinishedBy    string         `json:"finished_by"`
	Items         []ReceivedItem `json:"received_items"`
	Stats         FinalizeStats  `json:"stats"`
}
