package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

const defaultSnapshotKey = "hub:catalog:snapshot"

// RedisSnapshotCache stores the aggregated partner catalog as one JSON value
type RedisSnapshotCache struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSnapshotCache creates a snapshot cache on an existing client.
// An empty key selects the default snapshot key.
func NewRedisSnapshotCache(client redis.UniversalClient, key string) *RedisSnapshotCache {
	if key == "" {
		key = defaultSnapshotKey
	}
	return &RedisSnapshotCache{client: client, key: key}
}

// Get returns the cached snapshot
func (c *RedisSnapshotCache) Get(ctx context.Context) ([]catalog.Product, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// A corrupt value is treated as a miss
		return nil, false, nil
	}
	return products, true, nil
}

// Set stores the snapshot with ttl
func (c *RedisSnapshotCache) Set(ctx context.Context, products []catalog.Product, ttl time.Duration) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write catalog snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot
func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the Factory
func (c *RedisSnapshotCache) Close() error {
	return nil
}

// InMemorySnapshotCache keeps the snapshot in process memory
type InMemorySnapshotCache struct {
	mu        sync.RWMutex
	products  []catalog.Product
	expiresAt time.Time
	set       bool
	now       func() time.Time
}

// NewInMemorySnapshotCache creates an empty in-memory snapshot cache
func NewInMemorySnapshotCache() *InMemorySnapshotCache {
	return &InMemorySnapshotCache{now: time.Now}
}

// Get returns a copy of the snapshot while it is live
func (c *InMemorySnapshotCache) Get(ctx context.Context) ([]catalog.Product, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.set || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return cloneProducts(c.products), true, nil
}

// Set replaces the snapshot. A non-positive ttl stores nothing.
func (c *InMemorySnapshotCache) Set(ctx context.Context, products []catalog.Product, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		c.set = false
		c.products = nil
		return nil
	}
	c.products = cloneProducts(products)
	c.expiresAt = c.now().Add(ttl)
	c.set = true
	return nil
}

// cloneProducts copies the products together with their child slices
func cloneProducts(products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(products))
	for i, p := range products {
		p.Attributes = slices.Clone(p.Attributes)
		p.Contents = slices.Clone(p.Contents)
		out[i] = p
	}
	return out
}

// Invalidate drops the snapshot
func (c *InMemorySnapshotCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.set = false
	c.products = nil
	c.mu.Unlock()
	return nil
}

// Close releases nothing
func (c *InMemorySnapshotCache) Close() error {
	return nil
}

var (
	_ catalog.SnapshotCache = (*RedisSnapshotCache)(nil)
	_ catalog.SnapshotCache = (*InMemorySnapshotCache)(nil)
)
