package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/infrastructure/config"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration // Default: 60s
	ServiceName       string
	Insecure          bool
}

// MetricsConfigFromSettings maps the hub telemetry section onto a MetricsConfig
func MetricsConfigFromSettings(cfg config.TelemetryConfig) MetricsConfig {
	return MetricsConfig{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}
}

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates and configures a new MeterProvider.
// If metrics are disabled, Meter falls back to the global no-op meter.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger, config: cfg}

	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exportInterval := cfg.ExportInterval
	if exportInterval == 0 {
		exportInterval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", exportInterval),
		zap.String("service_name", cfg.ServiceName),
	)
	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("OpenTelemetry MeterProvider shutdown complete")
	return nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are enabled.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// GetConfig returns a copy of the metrics configuration.
func (mp *MeterProvider) GetConfig() MetricsConfig {
	return mp.config
}

// =============================================================================
// Hub Metrics
// =============================================================================

// Metric attribute keys
var (
	AttrProvider = attribute.Key("provider")
	AttrResult   = attribute.Key("result")
	AttrStatus   = attribute.Key("status")
	AttrReason   = attribute.Key("reason")
)

// FetchDurationBuckets are bucket boundaries for partner catalog fetches (seconds).
var FetchDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// HubMetrics holds the instruments recorded by the aggregator, the
// dispatcher and the reconciler. A nil *HubMetrics records nothing.
type HubMetrics struct {
	fetchTotal        metric.Int64Counter
	fetchProducts     metric.Int64Counter
	fetchDuration     metric.Float64Histogram
	dispatchOutcomes  metric.Int64Counter
	reconcileProducts metric.Int64Counter
	reconcileRuns     metric.Int64Counter
}

// NewHubMetrics registers the hub instruments on meter
func NewHubMetrics(meter metric.Meter) (*HubMetrics, error) {
	m := &HubMetrics{}
	var err error

	if m.fetchTotal, err = meter.Int64Counter("hub_adapter_fetch_total",
		metric.WithDescription("Partner catalog fetch attempts"),
		metric.WithUnit("{fetch}")); err != nil {
		return nil, fmt.Errorf("failed to create counter hub_adapter_fetch_total: %w", err)
	}
	if m.fetchProducts, err = meter.Int64Counter("hub_adapter_fetch_products_total",
		metric.WithDescription("Products returned by partner catalog fetches"),
		metric.WithUnit("{product}")); err != nil {
		return nil, fmt.Errorf("failed to create counter hub_adapter_fetch_products_total: %w", err)
	}
	if m.fetchDuration, err = meter.Float64Histogram("hub_adapter_fetch_duration_seconds",
		metric.WithDescription("Partner catalog fetch latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(FetchDurationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create histogram hub_adapter_fetch_duration_seconds: %w", err)
	}
	if m.dispatchOutcomes, err = meter.Int64Counter("hub_dispatch_outcomes_total",
		metric.WithDescription("Checkout and sale line outcomes"),
		metric.WithUnit("{line}")); err != nil {
		return nil, fmt.Errorf("failed to create counter hub_dispatch_outcomes_total: %w", err)
	}
	if m.reconcileProducts, err = meter.Int64Counter("hub_reconcile_products_total",
		metric.WithDescription("Products handled by catalog reconciliation"),
		metric.WithUnit("{product}")); err != nil {
		return nil, fmt.Errorf("failed to create counter hub_reconcile_products_total: %w", err)
	}
	if m.reconcileRuns, err = meter.Int64Counter("hub_reconcile_runs_total",
		metric.WithDescription("Catalog reconciliation runs"),
		metric.WithUnit("{run}")); err != nil {
		return nil, fmt.Errorf("failed to create counter hub_reconcile_runs_total: %w", err)
	}
	return m, nil
}

// RecordFetch records one adapter fetch. A non-nil err counts as a failure.
func (m *HubMetrics) RecordFetch(ctx context.Context, provider string, products int, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.fetchTotal.Add(ctx, 1, metric.WithAttributes(AttrProvider.String(provider), AttrResult.String(result)))
	m.fetchProducts.Add(ctx, int64(products), metric.WithAttributes(AttrProvider.String(provider)))
	m.fetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrProvider.String(provider)))
}

// RecordOutcome records one dispatched line
func (m *HubMetrics) RecordOutcome(ctx context.Context, provider, status, reason string) {
	if m == nil {
		return
	}
	m.dispatchOutcomes.Add(ctx, 1, metric.WithAttributes(
		AttrProvider.String(provider),
		AttrStatus.String(status),
		AttrReason.String(reason),
	))
}

// RecordReconcile records the counters of one reconciliation run
func (m *HubMetrics) RecordReconcile(ctx context.Context, status string, created, updated, failed int) {
	if m == nil {
		return
	}
	m.reconcileRuns.Add(ctx, 1, metric.WithAttributes(AttrStatus.String(status)))
	m.reconcileProducts.Add(ctx, int64(created), metric.WithAttributes(AttrResult.String("created")))
	m.reconcileProducts.Add(ctx, int64(updated), metric.WithAttributes(AttrResult.String("updated")))
	m.reconcileProducts.Add(ctx, int64(failed), metric.WithAttributes(AttrResult.String("failed")))
}
