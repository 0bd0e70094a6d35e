package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation
type DBConfig struct {
	TraceEnabled       bool
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	DBName             string
}

// DBMetrics records query latency and connection pool usage
type DBMetrics struct {
	queryDuration *Histogram
	slowQueries   *Counter
	threshold     time.Duration
	registration  metric.Registration
}

type dbStartKey struct{}

// InstrumentDB registers otelgorm for spans when tracing is enabled and gorm callbacks
// for query metrics. Pool statistics are observed on each collection.
func InstrumentDB(db *gorm.DB, meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}

	if cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, err
		}
	}

	m := &DBMetrics{threshold: cfg.SlowQueryThreshold}
	var err error
	m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	m.slowQueries, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}")
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		inUse, err := meter.Int64ObservableGauge("db_pool_connections",
			metric.WithDescription("Connections in the pool by state"),
			metric.WithUnit("{connection}"))
		if err != nil {
			return nil, err
		}
		m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			stats := sqlDB.Stats()
			o.ObserveInt64(inUse, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
			o.ObserveInt64(inUse, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
			o.ObserveInt64(inUse, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
			return nil
		}, inUse)
		if err != nil {
			return nil, err
		}
	}

	if err := m.registerCallbacks(db); err != nil {
		return nil, err
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.TraceEnabled),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return m, nil
}

// Stop unregisters the pool statistics callback
func (m *DBMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

func (m *DBMetrics) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("invhub_metrics:before_create", m.before),
		cb.Create().After("gorm:create").Register("invhub_metrics:after_create", m.after("create")),
		cb.Query().Before("gorm:query").Register("invhub_metrics:before_query", m.before),
		cb.Query().After("gorm:query").Register("invhub_metrics:after_query", m.after("query")),
		cb.Update().Before("gorm:update").Register("invhub_metrics:before_update", m.before),
		cb.Update().After("gorm:update").Register("invhub_metrics:after_update", m.after("update")),
		cb.Delete().Before("gorm:delete").Register("invhub_metrics:before_delete", m.before),
		cb.Delete().After("gorm:delete").Register("invhub_metrics:after_delete", m.after("delete")),
		cb.Row().Before("gorm:row").Register("invhub_metrics:before_row", m.before),
		cb.Row().After("gorm:row").Register("invhub_metrics:after_row", m.after("row")),
		cb.Raw().Before("gorm:raw").Register("invhub_metrics:before_raw", m.before),
		cb.Raw().After("gorm:raw").Register("invhub_metrics:after_raw", m.after("raw")),
	)
}

func (m *DBMetrics) before(tx *gorm.DB) {
	if tx.Statement.Context != nil {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, dbStartKey{}, time.Now())
	}
}

func (m *DBMetrics) after(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) { m.observe(tx, op) }
}

func (m *DBMetrics) observe(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(dbStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	m.queryDuration.RecordDuration(ctx, elapsed,
		AttrDBOperation.String(strings.ToUpper(op)),
		AttrDBTable.String(table),
	)

	if elapsed > m.threshold {
		m.slowQueries.Inc(ctx, AttrDBTable.String(table))
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
		}
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(tx.Error)
		}
	}
}
