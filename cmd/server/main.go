// Package main is the entry point for the adapter hub HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	integrationapp "github.com/bookingplatform/backend/internal/application/integration"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/cache"
	"github.com/bookingplatform/backend/internal/infrastructure/config"
	"github.com/bookingplatform/backend/internal/infrastructure/ecommerce"
	"github.com/bookingplatform/backend/internal/infrastructure/logger"
	"github.com/bookingplatform/backend/internal/infrastructure/migration"
	"github.com/bookingplatform/backend/internal/infrastructure/persistence"
	"github.com/bookingplatform/backend/internal/infrastructure/scheduler"
	"github.com/bookingplatform/backend/internal/infrastructure/telemetry"
	"github.com/bookingplatform/backend/internal/interfaces/http/handler"
	"github.com/bookingplatform/backend/internal/interfaces/http/middleware"
	"github.com/bookingplatform/backend/internal/interfaces/http/router"
)

// Version is overridden at build time with -ldflags "-X main.Version=..."
var Version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "adapter hub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := &logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	}

	// Bootstrap logger until the OTLP log exporter is ready
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfigFromSettings(cfg.Telemetry), bootLog)
	if err != nil {
		return fmt.Errorf("failed to initialize log exporter: %w", err)
	}

	log := bootLog
	if logProvider.IsEnabled() {
		level, _ := logger.ParseLevel(cfg.Log.Level)
		log, err = logger.New(logCfg, logger.WithCore(logProvider.ZapCore(level)))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	defer logger.Sync(log)

	log.Info("Starting adapter hub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", Version),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFromSettings(cfg.Telemetry), log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFromSettings(cfg.Telemetry), log)
	if err != nil {
		return fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	metrics, err := telemetry.NewHubMetrics(meterProvider.Meter("adapter-hub"))
	if err != nil {
		return fmt.Errorf("failed to register hub metrics: %w", err)
	}

	// ---------------------------------------------------------------------------
	// Storage
	// ---------------------------------------------------------------------------

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))),
		persistence.WithPlugins(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFromSettings(cfg.Telemetry, cfg.Database), log)),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := migrateSchema(ctx, db, log); err != nil {
		_ = db.Close()
		return err
	}

	productRepo := persistence.NewGormProductRepository(db.DB)

	cacheFactory := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	snapshotCache, err := cacheFactory.CreateSnapshotCache(ctx)
	if err != nil {
		return fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	idempotencyStore, err := cacheFactory.CreateIdempotencyStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to create idempotency store: %w", err)
	}

	// ---------------------------------------------------------------------------
	// Partner adapters and services
	// ---------------------------------------------------------------------------

	adapters, err := buildAdapters(cfg, log)
	if err != nil {
		return err
	}
	registry, err := integrationapp.NewAdapterRegistry(adapters, log)
	if err != nil {
		return fmt.Errorf("failed to build adapter registry: %w", err)
	}

	aggregator, err := integrationapp.NewCatalogAggregator(registry, log,
		integrationapp.WithAdapterTimeout(cfg.Aggregator.AdapterTimeout),
		integrationapp.WithAggregatorMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalog aggregator: %w", err)
	}

	catalogService, err := integrationapp.NewCatalogService(productRepo, aggregator, log,
		integrationapp.WithSnapshotCache(snapshotCache, cfg.Aggregator.CacheTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}

	dispatcher, err := integrationapp.NewOrderDispatcher(productRepo, registry, log,
		integrationapp.WithDispatcherMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create order dispatcher: %w", err)
	}

	source, err := reconcileSource(cfg.Reconciler, aggregator)
	if err != nil {
		return err
	}
	reconciler, err := integrationapp.NewCatalogReconciler(source, productRepo, log,
		integrationapp.WithReconcilerMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalog reconciler: %w", err)
	}

	reconcileScheduler, err := scheduler.NewReconcileScheduler(
		scheduler.ReconcileSchedulerConfigFromSettings(cfg.Reconciler),
		reconciler,
		log,
		scheduler.WithSnapshotInvalidator(catalogService),
	)
	if err != nil {
		return fmt.Errorf("failed to create reconcile scheduler: %w", err)
	}
	if err := reconcileScheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reconcile scheduler: %w", err)
	}

	// ---------------------------------------------------------------------------
	// HTTP
	// ---------------------------------------------------------------------------

	ginMode := "debug"
	if cfg.App.Env == "production" {
		ginMode = "release"
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           ginMode,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           middleware.CORSConfigFromSettings(cfg.HTTP),
		Security:       middleware.DefaultSecurityConfig(),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to build http engine: %w", err)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, Version, db)
	productHandler := handler.NewProductHandler(catalogService)
	adapterHandler := handler.NewAdapterHandler(registry, catalogService, dispatcher, reconciler)
	adapterHandler.SetIdempotencyStore(idempotencyStore, cfg.Sale.IdempotencyTTL)
	adapterHandler.SetJobQueue(reconcileScheduler)

	r := router.NewRouter(engine, router.WithHealthCheck(systemHandler.Health))
	r.Register(systemHandler)
	r.Register(productHandler)
	r.Register(adapterHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.Strings("adapters", registry.Names()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	if err := reconcileScheduler.Stop(shutdownCtx); err != nil {
		log.Warn("Reconcile scheduler stop failed", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Warn("Idempotency store close failed", zap.Error(err))
	}
	if err := snapshotCache.Close(); err != nil {
		log.Warn("Snapshot cache close failed", zap.Error(err))
	}
	if err := cacheFactory.Close(); err != nil {
		log.Warn("Cache factory close failed", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Warn("Database close failed", zap.Error(err))
	}
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = logProvider.Shutdown(shutdownCtx)

	log.Info("Server exited")
	return nil
}

// migrateSchema applies the embedded SQL migrations on postgres; sqlite
// databases are created from the gorm models
func migrateSchema(ctx context.Context, db *persistence.Database, log *zap.Logger) error {
	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("failed to auto-migrate sqlite schema: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// Closing the migrator would close the shared sql.DB
	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func buildAdapters(cfg *config.Config, log *zap.Logger) ([]integration.ProviderAdapter, error) {
	adapters := []integration.ProviderAdapter{}

	if cfg.Adapters.Cde.Enabled {
		a, err := ecommerce.NewCdeAdapter(ecommerce.NewPartnerConfig(cfg.Adapters.Cde, cfg.Breaker), log)
		if err != nil {
			return nil, fmt.Errorf("failed to create cde adapter: %w", err)
		}
		adapters = append(adapters, a)
	}
	if cfg.Adapters.Abc.Enabled {
		a, err := ecommerce.NewAbcAdapter(ecommerce.NewPartnerConfig(cfg.Adapters.Abc, cfg.Breaker), log)
		if err != nil {
			return nil, fmt.Errorf("failed to create abc adapter: %w", err)
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		log.Warn("No partner adapters enabled")
	}
	return adapters, nil
}

// reconcileSource picks the catalog the reconciler reads from
func reconcileSource(cfg config.ReconcilerConfig, aggregator *integrationapp.CatalogAggregator) (integration.CatalogSource, error) {
	if cfg.Source != "remote" {
		return aggregator, nil
	}
	client, err := ecommerce.NewRemoteCatalogClient(cfg.RemoteURL, cfg.JobTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote catalog client: %w", err)
	}
	return client, nil
}
