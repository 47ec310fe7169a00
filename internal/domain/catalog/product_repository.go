package catalog

import (
	"context"
	"time"
)

// ProductRepository defines the interface for the local inventory store
type ProductRepository interface {
	// FindByID finds a product by its ID, returning ErrNotFound when absent
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByNaturalKey finds a partner product by (OriginID, Provider)
	FindByNaturalKey(ctx context.Context, key NaturalKey) (*Product, error)

	// FindAll returns every stored product
	FindAll(ctx context.Context) ([]Product, error)

	// FindInternal returns the locally owned products
	FindInternal(ctx context.Context) ([]Product, error)

	// FindByOwner returns the products of one owner
	FindByOwner(ctx context.Context, owner int64) ([]Product, error)

	// IsInternal evaluates the ownership rule against the stored row
	IsInternal(ctx context.Context, id int64) (bool, error)

	// TryDecrement atomically subtracts qty from the stored quantity iff the
	// stored quantity is at least qty. Returns false when the guard fails.
	TryDecrement(ctx context.Context, id int64, qty int) (bool, error)

	// Create inserts a product together with its attributes and contents
	Create(ctx context.Context, product *Product) error

	// ReplaceSnapshot persists the overwritten fields of an existing product
	// and atomically replaces its children tagged with the product provider
	ReplaceSnapshot(ctx context.Context, product *Product) error

	// Delete removes a product and its children
	Delete(ctx context.Context, id int64) error

	// ListCategories returns every category
	ListCategories(ctx context.Context) ([]Category, error)
}

// SnapshotCache caches the aggregated partner catalog
type SnapshotCache interface {
	// Get returns the cached snapshot; found is false on a miss
	Get(ctx context.Context) (products []Product, found bool, err error)

	// Set stores the snapshot for ttl
	Set(ctx context.Context, products []Product, ttl time.Duration) error

	// Invalidate drops the cached snapshot
	Invalidate(ctx context.Context) error

	// Close releases resources
	Close() error
}
