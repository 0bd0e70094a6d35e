package receiving

import "github.com/shopspring/decimal"

// SessionStatus is the lifecycle state of a receiving session
type SessionStatus string

const (
	SessionStatusNew        SessionStatus = "new"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusPaused     SessionStatus = "paused"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusNew:        {SessionStatusInProgress, SessionStatusPaused, SessionStatusCompleted, SessionStatusCancelled},
	SessionStatusInProgress: {SessionStatusPaused, SessionStatusCompleted, SessionStatusCancelled},
	SessionStatusPaused:     {SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled},
}

// IsValid checks if the status is valid
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusNew, SessionStatusInProgress, SessionStatusPaused, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal returns true for completed and cancelled sessions
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// AcceptsWork returns true when scans and quantity edits are allowed
func (s SessionStatus) AcceptsWork() bool {
	return s == SessionStatusNew || s == SessionStatusInProgress
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// LineStatus is the reconciliation state of one invoice line
type LineStatus string

const (
	LineStatusPending LineStatus = "pending"
	LineStatusPartial LineStatus = "partial"
	LineStatusMatched LineStatus = "matched"
	LineStatusOverage LineStatus = "overage"
)

// IsValid checks if the status is valid
func (s LineStatus) IsValid() bool {
	switch s {
	case LineStatusPending, LineStatusPartial, LineStatusMatched, LineStatusOverage:
		return true
	}
	return false
}

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// StatusFor is the only place a line status is decided.
func StatusFor(received, ordered decimal.Decimal) LineStatus {
	switch {
	case received.LessThanOrEqual(decimal.Zero):
		return LineStatusPending
	case received.LessThan(ordered):
		return LineStatusPartial
	case received.Equal(ordered):
		return LineStatusMatched
	default:
		return LineStatusOverage
	}
}

// MatchMethod records how a line was linked to a catalog product
type MatchMethod string

const (
	MatchMethodEAN         MatchMethod = "ean"
	MatchMethodSupplierSKU MatchMethod = "supplier_sku"
	MatchMethodManual      MatchMethod = "manual"
	MatchMethodNone        MatchMethod = "none"
)

// IsValid checks if the match method is valid
func (m MatchMethod) IsValid() bool {
	switch m {
	case MatchMethodEAN, MatchMethodSupplierSKU, MatchMethodManual, MatchMethodNone:
		return true
	}
	return false
}

// String returns the string representation of MatchMethod
func (m MatchMethod) String() string {
	return string(m)
}

// CodeField is the line field a scanned code was equal to
type CodeField string

const (
	CodeFieldEAN         CodeField = "ean"
	CodeFieldSupplierSKU CodeField = "supplier_sku"
	CodeFieldProductCode CodeField = "product_code"
)

// ScanEventKind distinguishes physical scans from operator edits in the audit trail
type ScanEventKind string

const (
	ScanEventKindScan       ScanEventKind = "scan"
	ScanEventKindManualEdit ScanEventKind = "manual_edit"
	ScanEventKindBulkAccept ScanEventKind = "bulk_accept"
	ScanEventKindBulkReset  ScanEventKind = "bulk_reset"
	ScanEventKindAssign     ScanEventKind = "assign"
)

// IsValid checks if the kind is valid
func (k ScanEventKind) IsValid() bool {
	switch k {
	case ScanEventKindScan, ScanEventKindManualEdit, ScanEventKindBulkAccept, ScanEventKindBulkReset, ScanEventKindAssign:
		return true
	}
	return false
}

// String returns the string representation of ScanEventKind
func (k ScanEventKind) String() string {
	return string(k)
}

// ScanResult is the outcome recorded on a scan event
type ScanResult string

const (
	ScanResultPending    ScanResult = "pending"
	ScanResultPartial    ScanResult = "partial"
	ScanResultMatched    ScanResult = "matched"
	ScanResultOverage    ScanResult = "overage"
	ScanResultUnexpected ScanResult = "unexpected"
	ScanResultReset      ScanResult = "reset"
)

// IsValid checks if the result is valid
func (r ScanResult) IsValid() bool {
	switch r {
	case ScanResultPending, ScanResultPartial, ScanResultMatched, ScanResultOverage, ScanResultUnexpected, ScanResultReset:
		return true
	}
	return false
}

// String returns the string representation of ScanResult
func (r ScanResult) String() string {
	return string(r)
}

// ResultFor maps a line status onto the scan result vocabulary
func ResultFor(status LineStatus) ScanResult {
	return ScanResult(status)
}
