package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	integrationapp "github.com/bookingplatform/backend/internal/application/integration"
	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/scheduler"
)

type stubDirectory []string

func (d stubDirectory) Names() []string { return d }

// MockSnapshotReader implements SnapshotReader for testing
type MockSnapshotReader struct {
	mock.Mock
}

func (m *MockSnapshotReader) Snapshot(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockSnapshotReader) RefreshSnapshot(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

// MockSaleDispatcher implements SaleDispatcher for testing
type MockSaleDispatcher struct {
	mock.Mock
}

func (m *MockSaleDispatcher) Checkout(ctx context.Context, req integration.CheckoutRequest) integration.LineOutcome {
	args := m.Called(ctx, req)
	return args.Get(0).(integration.LineOutcome)
}

func (m *MockSaleDispatcher) Sell(ctx context.Context, reqs []integration.CheckoutRequest) (*integration.SaleResult, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SaleResult), args.Error(1)
}

// MockReconciler implements Reconciler for testing
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context) (*integrationapp.ReconcileReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.ReconcileReport), args.Error(1)
}

// MockJobQueue implements ReconcileJobQueue for testing
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) TriggerNow(trigger scheduler.JobTrigger) (*scheduler.ReconcileJob, error) {
	args := m.Called(trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.ReconcileJob), args.Error(1)
}

func (m *MockJobQueue) GetJobHistory(limit int) []*scheduler.ReconcileJob {
	args := m.Called(limit)
	return args.Get(0).([]*scheduler.ReconcileJob)
}

// MockIdempotencyStore implements shared.IdempotencyStore for testing
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// MockCatalogQueries implements CatalogQueries for testing
type MockCatalogQueries struct {
	mock.Mock
}

func (m *MockCatalogQueries) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockCatalogQueries) ListInternalProducts(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockCatalogQueries) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogQueries) ListByOwner(ctx context.Context, owner int64) ([]catalog.Product, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockCatalogQueries) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCatalogQueries) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
