package integration

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNaturalKey(ctx context.Context, key catalog.NaturalKey) (*catalog.Product, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindInternal(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByOwner(ctx context.Context, owner int64) ([]catalog.Product, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) IsInternal(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) TryDecrement(ctx context.Context, id int64, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ReplaceSnapshot(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

var _ catalog.ProductRepository = (*MockProductRepository)(nil)

// MockCatalogSource is a mock implementation of CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) ListAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

// MockSnapshotCache is a mock implementation of SnapshotCache
type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context) ([]catalog.Product, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Bool(1), args.Error(2)
}

func (m *MockSnapshotCache) Set(ctx context.Context, products []catalog.Product, ttl time.Duration) error {
	args := m.Called(ctx, products, ttl)
	return args.Error(0)
}

func (m *MockSnapshotCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSnapshotCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeAdapter is a scriptable ProviderAdapter
type fakeAdapter struct {
	name     string
	products []catalog.Product
	fetch    func(ctx context.Context) []catalog.Product
	answer   bool
	err      error

	checkouts atomic.Int32
	sales     atomic.Int32
	lastLine  atomic.Value
}

func newFakeAdapter(name string, products ...catalog.Product) *fakeAdapter {
	for i := range products {
		products[i].TagProvider(name)
	}
	return &fakeAdapter{name: name, products: products, answer: true}
}

func (f *fakeAdapter) SourceName() string { return f.name }

func (f *fakeAdapter) FetchCatalog(ctx context.Context) []catalog.Product {
	if f.fetch != nil {
		return f.fetch(ctx)
	}
	out := make([]catalog.Product, len(f.products))
	copy(out, f.products)
	return out
}

func (f *fakeAdapter) Checkout(ctx context.Context, line integration.OrderLine) (bool, error) {
	f.checkouts.Add(1)
	f.lastLine.Store(line)
	return f.answer, f.err
}

func (f *fakeAdapter) Sell(ctx context.Context, line integration.OrderLine) (bool, error) {
	f.sales.Add(1)
	f.lastLine.Store(line)
	return f.answer, f.err
}

func partnerProduct(originID int64, name string) catalog.Product {
	return catalog.Product{
		OriginID:          originID,
		Name:              name,
		AvailableQuantity: 5,
		Currency:          "EUR",
		Attributes:        []catalog.Attribute{{Key: "color", Value: "red"}},
		Contents:          []catalog.Content{},
	}
}
