package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/inventory-hub/backend/internal/application/catalog"
	inventoryapp "github.com/inventory-hub/backend/internal/application/inventory"
	receivingapp "github.com/inventory-hub/backend/internal/application/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/auth"
	"github.com/inventory-hub/backend/internal/infrastructure/cache"
	"github.com/inventory-hub/backend/internal/infrastructure/config"
	"github.com/inventory-hub/backend/internal/infrastructure/event"
	"github.com/inventory-hub/backend/internal/infrastructure/logger"
	"github.com/inventory-hub/backend/internal/infrastructure/migration"
	"github.com/inventory-hub/backend/internal/infrastructure/persistence"
	"github.com/inventory-hub/backend/internal/infrastructure/telemetry"
	"github.com/inventory-hub/backend/internal/interfaces/http/handler"
	"github.com/inventory-hub/backend/internal/interfaces/http/middleware"
	"github.com/inventory-hub/backend/internal/interfaces/http/router"
	"github.com/inventory-hub/backend/migrations"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const apiVersion = "v1"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventory hub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Telemetry comes first so database instrumentation can use its meter
	provider, err := telemetry.NewProvider(startCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	meter := provider.Meter(cfg.Telemetry.ServiceName)
	if provider.LogsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		log = log.WithOptions(zap.WrapCore(provider.Tee(level)))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.Profiling.Enabled,
		ServerAddress:   cfg.Telemetry.Profiling.ServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Goroutines:      cfg.Telemetry.Profiling.Goroutines,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if provider.EnableSpanProfiles(profiler) {
		log.Info("Span profiles enabled")
	}

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	dbMetrics, err := telemetry.InstrumentDB(db.DB, meter, telemetry.DBConfig{
		TraceEnabled:       provider.TracingEnabled() && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		DBName:             cfg.Database.DBName,
	}, log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Schema: gorm auto-migration for development, versioned SQL otherwise
	var schema handler.SchemaReporter
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(startCtx); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	} else {
		schema = schemaReporter(db, log)
	}

	// Redis backed idempotency and ledger locks, or process-local fallbacks
	coord, err := cache.NewCoordination(startCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize coordination backend", zap.Error(err))
	}

	// Initialize repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	identifierRepo := persistence.NewGormIdentifierRepository(db.DB)
	sessionRepo := persistence.NewGormReceivingSessionRepository(db.DB)
	scanRepo := persistence.NewGormScanEventRepository(db.DB)
	ledgerRepo := persistence.NewGormStockLedgerRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	catalogScope := persistence.NewCatalogTransactionScope(db.DB)
	supplierService := catalogapp.NewSupplierService(supplierRepo)
	productService := catalogapp.NewProductService(catalogScope, productRepo, eventBus, log)
	identifierService := catalogapp.NewIdentifierService(catalogScope, identifierRepo, log)

	ledgerService := inventoryapp.NewStockLedgerService(persistence.NewInventoryTransactionScope(db.DB), ledgerRepo, log)
	ledgerService.SetLocker(coord.Locker)

	receivingConfig := receivingapp.DefaultServiceConfig()
	if cfg.Receiving.ConflictRetries > 0 {
		receivingConfig.ConflictRetries = cfg.Receiving.ConflictRetries
	}
	if cfg.Receiving.DefaultOperator != "" {
		receivingConfig.DefaultOperator = cfg.Receiving.DefaultOperator
	}
	ledgerService.SetConflictRetries(receivingConfig.ConflictRetries)
	receivingService := receivingapp.NewReceivingService(
		persistence.NewReceivingTransactionScope(db.DB),
		sessionRepo,
		scanRepo,
		eventBus,
		receivingConfig,
		log,
	)

	if provider.MetricsEnabled() {
		receivingMetrics, err := telemetry.NewReceivingMetrics(telemetry.ReceivingMetricsConfig{Meter: meter, Logger: log})
		if err != nil {
			log.Fatal("Failed to create receiving metrics", zap.Error(err))
		}
		receivingService.SetMetrics(receivingMetrics)
		ledgerService.SetMetrics(receivingMetrics)
	}

	// Register event handlers: a finalized session posts its receipt to the ledger once
	eventBus.Subscribe(event.NewIdempotentHandler(
		inventoryapp.NewReceivingFinalizedHandler(ledgerService, log),
		coord.Idempotency,
		log,
		event.WithKeyFunc(event.AggregateKey),
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			TTL:     cfg.Event.IdempotencyTTL,
			Enabled: true,
		}),
	))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg)))
	if provider.TracingEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)

	operatorConfig := middleware.OperatorConfig{
		SkipPaths: []string{"/api/" + apiVersion + "/health", "/api/" + apiVersion + "/system/info"},
		Logger:    log,
	}
	if cfg.JWT.Enabled {
		operatorConfig.JWTService = auth.NewJWTService(cfg.JWT)
	}
	engine.Use(middleware.OperatorIdentity(operatorConfig))
	if provider.TracingEnabled() {
		engine.Use(middleware.SpanAttributes())
	}
	if profiler.Enabled() {
		engine.Use(middleware.ProfilingLabels("/api/" + apiVersion + "/health"))
	}

	// Initialize handlers and routes
	limits := router.DefaultLimits
	if cfg.HTTP.MaxBodySize > 0 {
		limits.MaxBodySize = cfg.HTTP.MaxBodySize
	}
	if cfg.HTTP.MaxUploadSize > 0 {
		limits.MaxUploadSize = cfg.HTTP.MaxUploadSize
	}
	r := router.NewRouter(engine, router.WithAPIVersion(apiVersion)).
		Register(router.APIGroups(router.Handlers{
			System:    handler.NewSystemHandler(cfg.App.Name, version, db, schema),
			Supplier:  handler.NewSupplierHandler(supplierService),
			Product:   handler.NewProductHandler(productService, identifierService),
			Receiving: handler.NewReceivingHandler(receivingService, ledgerService, limits.MaxUploadSize),
		}, limits)...)
	r.Setup()
	for _, rt := range r.Routes() {
		log.Debug("Route registered", zap.String("group", rt.Group), zap.String("method", rt.Method), zap.String("path", rt.Path))
	}
	log.Info("Routes registered", zap.Int("count", len(r.Routes())), zap.String("base", r.Base()))

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := dbMetrics.Stop(); err != nil {
		log.Error("Error stopping database metrics", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := provider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}
	if err := coord.Close(); err != nil {
		log.Error("Error closing coordination backend", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// schemaReporter reports the embedded migration state on the health probe.
// Migrations themselves are applied by cmd/migrate.
func schemaReporter(db *persistence.Database, log *zap.Logger) handler.SchemaReporter {
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Warn("Schema status unavailable", zap.Error(err))
		return nil
	}
	m, err := migration.NewEmbedded(sqlDB, migrations.FS, log)
	if err != nil {
		log.Warn("Schema status unavailable", zap.Error(err))
		return nil
	}
	status, err := m.Status()
	if err != nil {
		log.Warn("Failed to read schema version", zap.Error(err))
	} else if status.Dirty || status.Pending {
		log.Warn("Database schema is behind; run the migrate command",
			zap.Uint("version", status.Version),
			zap.Uint("latest", status.Latest),
			zap.Bool("dirty", status.Dirty),
		)
	}
	return m
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return cors
}
