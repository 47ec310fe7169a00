package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFixture() []catalog.Product {
	return []catalog.Product{
		{OriginID: 7, Provider: "cde", Name: "Lamp", AvailableQuantity: 3, Price: decimal.NewFromInt(20), Currency: "EUR", Owner: 1},
		{OriginID: 8, Provider: "abc", Name: "Desk", AvailableQuantity: 1, Price: decimal.NewFromInt(150), Currency: "EUR", Owner: 2},
	}
}

func TestInMemorySnapshotCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss before set", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		products, found, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, products)
	})

	t.Run("hit after set", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		require.NoError(t, c.Set(ctx, snapshotFixture(), time.Minute))

		products, found, err := c.Get(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, products, 2)
		assert.Equal(t, "Lamp", products[0].Name)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		require.NoError(t, c.Set(ctx, snapshotFixture(), time.Minute))

		products, _, _ := c.Get(ctx)
		products[0].Name = "changed"

		again, _, _ := c.Get(ctx)
		assert.Equal(t, "Lamp", again[0].Name)
	})

	t.Run("child slices are copied on set and get", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		input := snapshotFixture()
		input[0].Attributes = []catalog.Attribute{{Key: "color", Value: "red", Provider: "cde"}}
		input[0].Contents = []catalog.Content{{ContentID: 1, Type: "image", URL: "https://img/1", Provider: "cde"}}
		require.NoError(t, c.Set(ctx, input, time.Minute))

		input[0].Attributes[0].Value = "changed after set"
		input[0].Contents[0].URL = "changed after set"

		products, ok, err := c.Get(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		products[0].Attributes[0].Value = "changed after get"
		products[0].Contents[0].URL = "changed after get"

		again, _, _ := c.Get(ctx)
		assert.Equal(t, "red", again[0].Attributes[0].Value)
		assert.Equal(t, "https://img/1", again[0].Contents[0].URL)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Set(ctx, snapshotFixture(), 30*time.Second))

		now = now.Add(31 * time.Second)
		_, found, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("zero ttl stores nothing", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		require.NoError(t, c.Set(ctx, snapshotFixture(), 0))
		_, found, _ := c.Get(ctx)
		assert.False(t, found)
	})

	t.Run("invalidate", func(t *testing.T) {
		c := NewInMemorySnapshotCache()
		require.NoError(t, c.Set(ctx, snapshotFixture(), time.Minute))
		require.NoError(t, c.Invalidate(ctx))
		_, found, _ := c.Get(ctx)
		assert.False(t, found)
		assert.NoError(t, c.Close())
	})
}
