package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/logger"
	"github.com/bookingplatform/backend/internal/infrastructure/telemetry"
)

// DefaultAdapterTimeout bounds a single adapter fetch
const DefaultAdapterTimeout = 10 * time.Second

// CatalogAggregator fans out one catalog fetch per registered adapter and
// concatenates the contributions. A slow, failing or panicking adapter
// contributes nothing; it never fails the aggregate.
type CatalogAggregator struct {
	registry integration.AdapterRegistry
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *telemetry.HubMetrics
}

var _ integration.CatalogSource = (*CatalogAggregator)(nil)

// AggregatorOption configures a CatalogAggregator
type AggregatorOption func(*CatalogAggregator)

// WithAdapterTimeout sets the per-adapter fetch timeout
func WithAdapterTimeout(d time.Duration) AggregatorOption {
	return func(a *CatalogAggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAggregatorMetrics records fetch metrics
func WithAggregatorMetrics(m *telemetry.HubMetrics) AggregatorOption {
	return func(a *CatalogAggregator) {
		a.metrics = m
	}
}

// NewCatalogAggregator creates an aggregator over registry
func NewCatalogAggregator(registry integration.AdapterRegistry, logger *zap.Logger, opts ...AggregatorOption) (*CatalogAggregator, error) {
	if registry == nil {
		return nil, integration.ErrRegistryRequired
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}
	a := &CatalogAggregator{
		registry: registry,
		timeout:  DefaultAdapterTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ListAll returns the concatenated catalogs of every adapter. The order of
// the result is unspecified. The error is always nil.
func (a *CatalogAggregator) ListAll(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "aggregator", "list_all")
	defer span.End()

	adapters := a.registry.List()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		products = make([]catalog.Product, 0)
	)
	for _, adapter := range adapters {
		wg.Add(1)
		go func(adapter integration.ProviderAdapter) {
			defer wg.Done()
			contribution := a.fetchOne(ctx, adapter)
			if len(contribution) == 0 {
				return
			}
			mu.Lock()
			products = append(products, contribution...)
			mu.Unlock()
		}(adapter)
	}
	wg.Wait()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemCount, len(products),
		"hub.adapter_count", len(adapters),
	)
	return products, nil
}

type fetchResult struct {
	products []catalog.Product
	err      error
}

// fetchOne runs one adapter under its own deadline. The adapter runs in a
// separate goroutine so an adapter that ignores its context is abandoned
// at the deadline instead of holding up the aggregate.
func (a *CatalogAggregator) fetchOne(ctx context.Context, adapter integration.ProviderAdapter) []catalog.Product {
	provider := adapter.SourceName()
	ctx, span := telemetry.StartServiceSpan(ctx, "aggregator", "fetch",
		telemetry.WithAttribute(telemetry.SpanAttrProvider, provider))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	log := logger.WithLogger(ctx, a.logger).With(zap.String("provider", provider))
	start := time.Now()

	// Buffered so the fetch goroutine never blocks after a timeout
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		done <- fetchResult{products: adapter.FetchCatalog(ctx)}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Warn("Adapter fetch panicked", zap.Error(res.err))
			telemetry.RecordError(span, res.err)
			a.metrics.RecordFetch(ctx, provider, 0, time.Since(start), res.err)
			return nil
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrItemCount, len(res.products))
		a.metrics.RecordFetch(ctx, provider, len(res.products), time.Since(start), nil)
		log.Debug("Adapter fetch completed",
			zap.Int("product_count", len(res.products)),
			zap.Duration("duration", time.Since(start)),
		)
		return res.products
	case <-ctx.Done():
		err := ctx.Err()
		log.Warn("Adapter fetch abandoned", zap.Error(err), zap.Duration("timeout", a.timeout))
		telemetry.RecordError(span, err)
		a.metrics.RecordFetch(ctx, provider, 0, time.Since(start), err)
		return nil
	}
}
