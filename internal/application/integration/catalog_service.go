package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/logger"
	"github.com/bookingplatform/backend/internal/infrastructure/telemetry"
)

// DefaultSnapshotTTL is how long an aggregated snapshot is served from cache
const DefaultSnapshotTTL = 30 * time.Second

// CatalogService answers catalog queries: the aggregated partner snapshot
// and the canonical product listings from the local store.
type CatalogService struct {
	repo   catalog.ProductRepository
	source integration.CatalogSource
	cache  catalog.SnapshotCache
	ttl    time.Duration
	logger *zap.Logger
}

// CatalogServiceOption configures a CatalogService
type CatalogServiceOption func(*CatalogService)

// WithSnapshotCache serves snapshots from cache for ttl
func WithSnapshotCache(cache catalog.SnapshotCache, ttl time.Duration) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	repo catalog.ProductRepository,
	source integration.CatalogSource,
	logger *zap.Logger,
	opts ...CatalogServiceOption,
) (*CatalogService, error) {
	if repo == nil {
		return nil, integration.ErrRepositoryRequired
	}
	if source == nil {
		return nil, integration.ErrSourceRequired
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}
	s := &CatalogService{repo: repo, source: source, ttl: DefaultSnapshotTTL, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// Snapshot returns the aggregated partner catalog, cache-aside. Cache
// failures are logged and the source is used directly.
func (s *CatalogService) Snapshot(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "snapshot")
	defer span.End()

	if s.cache != nil {
		products, found, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			logger.WithLogger(ctx, s.logger).Warn("Snapshot cache read failed", zap.Error(err))
		case found:
			telemetry.SetAttributes(span, "hub.cache_hit", true, telemetry.SpanAttrItemCount, len(products))
			return products, nil
		}
	}
	telemetry.SetAttributes(span, "hub.cache_hit", false)
	return s.load(ctx)
}

// RefreshSnapshot drops the cached snapshot and aggregates a fresh one
func (s *CatalogService) RefreshSnapshot(ctx context.Context) ([]catalog.Product, error) {
	s.InvalidateSnapshot(ctx)
	return s.load(ctx)
}

// InvalidateSnapshot drops the cached snapshot, if any
func (s *CatalogService) InvalidateSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Snapshot cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) load(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrNoSnapshot, err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, products, s.ttl); err != nil {
			logger.WithLogger(ctx, s.logger).Warn("Snapshot cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// ---------------------------------------------------------------------------
// Canonical queries
// ---------------------------------------------------------------------------

// ListProducts returns every stored product
func (s *CatalogService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.repo.FindAll(ctx)
	return products, persistenceErr(err)
}

// ListInternalProducts returns the locally owned products
func (s *CatalogService) ListInternalProducts(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.repo.FindInternal(ctx)
	return products, persistenceErr(err)
}

// GetProduct returns one product or catalog.ErrNotFound
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return product, nil
}

// ListByOwner returns the products of one owner
func (s *CatalogService) ListByOwner(ctx context.Context, owner int64) ([]catalog.Product, error) {
	products, err := s.repo.FindByOwner(ctx, owner)
	return products, persistenceErr(err)
}

// ListCategories returns every product category
func (s *CatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	return categories, persistenceErr(err)
}

// DeleteProduct removes a product and its children
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return persistenceErr(err)
	}
	logger.WithLogger(ctx, s.logger).Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// persistenceErr keeps taxonomy errors and classifies the rest as store failures
func persistenceErr(err error) error {
	if err == nil || errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %v", catalog.ErrPersistence, err)
}
