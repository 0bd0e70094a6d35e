package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ReceivingMetrics tracks receiving activity: sessions, scans, conflicts and ledger postings.
type ReceivingMetrics struct {
	logger *zap.Logger

	sessionsCreated   *Counter
	sessionsFinalized *Counter
	linesCreated      *Counter
	linesUnmatched    *Counter
	scansTotal        *Counter
	conflictsTotal    *Counter
	ledgerMovements   *Counter
	operationDuration *Histogram
}

// ReceivingMetricsConfig holds configuration for receiving metrics.
type ReceivingMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewReceivingMetrics creates a new ReceivingMetrics instance.
func NewReceivingMetrics(cfg ReceivingMetricsConfig) (*ReceivingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rm := &ReceivingMetrics{logger: logger}
	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&rm.sessionsCreated, "invhub_receiving_sessions_created_total", "Receiving sessions created", "{sessions}"},
		{&rm.sessionsFinalized, "invhub_receiving_sessions_finalized_total", "Receiving sessions finalized", "{sessions}"},
		{&rm.linesCreated, "invhub_receiving_lines_created_total", "Invoice lines turned into receiving lines", "{lines}"},
		{&rm.linesUnmatched, "invhub_receiving_lines_unmatched_total", "Invoice lines no catalog product was found for", "{lines}"},
		{&rm.scansTotal, "invhub_receiving_scans_total", "Scans and operator edits by kind and result", "{scans}"},
		{&rm.conflictsTotal, "invhub_receiving_conflicts_total", "Optimistic lock conflicts on receiving sessions", "{conflicts}"},
		{&rm.ledgerMovements, "invhub_ledger_movements_total", "Stock movements posted by outcome", "{movements}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	rm.operationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "invhub_receiving_operation_duration_seconds",
		Description: "Duration of receiving operations including retries",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// RecordSessionCreated counts a new session and its line match rate
func (rm *ReceivingMetrics) RecordSessionCreated(ctx context.Context, supplierID string, lines, unmatched int) {
	attrs := []attribute.KeyValue{AttrSupplier.String(supplierID)}
	rm.sessionsCreated.Inc(ctx, attrs...)
	rm.linesCreated.Add(ctx, int64(lines), attrs...)
	rm.linesUnmatched.Add(ctx, int64(unmatched), attrs...)
}

// RecordScan counts one scan-log entry
func (rm *ReceivingMetrics) RecordScan(ctx context.Context, kind, result string) {
	rm.scansTotal.Inc(ctx, AttrScanKind.String(kind), AttrScanResult.String(result))
}

// RecordFinalized counts a finalized session
func (rm *ReceivingMetrics) RecordFinalized(ctx context.Context, supplierID string) {
	rm.sessionsFinalized.Inc(ctx, AttrSupplier.String(supplierID))
}

// RecordConflict counts an optimistic lock conflict
func (rm *ReceivingMetrics) RecordConflict(ctx context.Context, operation string) {
	rm.conflictsTotal.Inc(ctx, AttrOperation.String(operation))
}

// RecordLedgerPosting counts movements applied, skipped as duplicates, or skipped for a missing product
func (rm *ReceivingMetrics) RecordLedgerPosting(ctx context.Context, applied, duplicates, skipped int) {
	rm.ledgerMovements.Add(ctx, int64(applied), AttrLedgerOutcome.String("applied"))
	rm.ledgerMovements.Add(ctx, int64(duplicates), AttrLedgerOutcome.String("duplicate"))
	rm.ledgerMovements.Add(ctx, int64(skipped), AttrLedgerOutcome.String("skipped"))
}

// RecordOperation records how long a receiving operation took
func (rm *ReceivingMetrics) RecordOperation(ctx context.Context, operation string, d time.Duration, err error) {
	rm.operationDuration.RecordDuration(ctx, d,
		AttrOperation.String(operation),
		attribute.Bool("error", err != nil),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewReceivingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
