package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInternalProduct(t *testing.T) {
	t.Run("creates internal product with valid inputs", func(t *testing.T) {
		p, err := NewInternalProduct(" Desk Lamp ", "LED lamp", 4, decimal.NewFromFloat(19.99), "eur", 7)
		require.NoError(t, err)

		assert.Equal(t, "Desk Lamp", p.Name)
		assert.Equal(t, "EUR", p.Currency)
		assert.Equal(t, NoOrigin, p.OriginID)
		assert.Empty(t, p.Provider)
		assert.True(t, p.IsInternal())
		assert.Equal(t, int64(7), p.CreatedBy)
		assert.NotNil(t, p.Attributes)
		assert.NotNil(t, p.Contents)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewInternalProduct("", "", 1, decimal.Zero, "EUR", 1)
		assert.ErrorIs(t, err, ErrProductNameRequired)
	})

	t.Run("fails with name too long", func(t *testing.T) {
		_, err := NewInternalProduct(strings.Repeat("x", 201), "", 1, decimal.Zero, "EUR", 1)
		assert.ErrorIs(t, err, ErrProductNameTooLong)
	})

	t.Run("fails with negative quantity", func(t *testing.T) {
		_, err := NewInternalProduct("Lamp", "", -1, decimal.Zero, "EUR", 1)
		assert.ErrorIs(t, err, ErrNegativeQuantity)
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewInternalProduct("Lamp", "", 1, decimal.NewFromInt(-1), "EUR", 1)
		assert.ErrorIs(t, err, ErrNegativePrice)
	})

	t.Run("fails with malformed currency", func(t *testing.T) {
		_, err := NewInternalProduct("Lamp", "", 1, decimal.Zero, "EURO", 1)
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
}

func TestProduct_IsInternal(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		originID int64
		want     bool
	}{
		{"blank provider and no origin", "", NoOrigin, true},
		{"whitespace provider and no origin", "   ", NoOrigin, false},
		{"provider with origin", "cde", 42, false},
		{"blank provider with origin", "", 42, false},
		{"provider without origin", "cde", NoOrigin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Provider: tt.provider, OriginID: tt.originID}
			assert.Equal(t, tt.want, p.IsInternal())
		})
	}
}

func TestProduct_CheckOwnership(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		originID int64
		wantErr  bool
	}{
		{"internal", "", NoOrigin, false},
		{"external", "abc", 9, false},
		{"origin without provider", "", 9, true},
		{"provider without origin", "abc", NoOrigin, true},
		{"whitespace provider", "  ", NoOrigin, true},
		{"whitespace provider with origin", "\t", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{ID: 1, Provider: tt.provider, OriginID: tt.originID}
			err := p.CheckOwnership()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProduct_HasStock(t *testing.T) {
	p := &Product{AvailableQuantity: 3}
	assert.True(t, p.HasStock(3))
	assert.True(t, p.HasStock(1))
	assert.False(t, p.HasStock(4))
}

func TestProduct_TagProvider(t *testing.T) {
	p := &Product{
		Attributes: []Attribute{{Key: "color", Value: "red"}},
		Contents:   []Content{{ContentID: 1, Type: "image"}},
	}
	p.TagProvider("cde")

	assert.Equal(t, "cde", p.Provider)
	assert.Equal(t, "cde", p.Attributes[0].Provider)
	assert.Equal(t, "cde", p.Contents[0].Provider)

	empty := &Product{}
	empty.TagProvider("abc")
	assert.NotNil(t, empty.Attributes)
	assert.NotNil(t, empty.Contents)
	assert.Empty(t, empty.Attributes)
}

func TestProduct_ApplySnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &Product{
		ID:                11,
		OriginID:          5,
		Provider:          "cde",
		Name:              "Old",
		AvailableQuantity: 1,
		Price:             decimal.NewFromInt(10),
		Currency:          "USD",
		CategoryID:        2,
		CreatedBy:         3,
		Attributes: []Attribute{
			{Key: "size", Value: "S", Provider: "cde"},
			{Key: "note", Value: "local", Provider: ""},
		},
		Contents: []Content{
			{ContentID: 1, Type: "image", Provider: "cde"},
			{ContentID: 2, Type: "manual", Provider: ""},
		},
	}
	fresh := &Product{
		OriginID:          5,
		Provider:          "cde",
		Name:              "New",
		Description:       "updated",
		AvailableQuantity: 8,
		Price:             decimal.NewFromInt(12),
		Currency:          "EUR",
		Owner:             44,
		Attributes:        []Attribute{{Key: "size", Value: "M"}},
		Contents:          []Content{{ContentID: 3, Type: "video"}},
	}

	existing.ApplySnapshot(fresh, now)

	assert.Equal(t, int64(11), existing.ID)
	assert.Equal(t, "New", existing.Name)
	assert.Equal(t, "updated", existing.Description)
	assert.Equal(t, 8, existing.AvailableQuantity)
	assert.True(t, decimal.NewFromInt(12).Equal(existing.Price))
	assert.Equal(t, "EUR", existing.Currency)
	assert.Equal(t, int64(44), existing.Owner)
	assert.Equal(t, int64(2), existing.CategoryID)
	assert.Equal(t, int64(3), existing.CreatedBy)
	assert.Equal(t, now, existing.UpdatedAt)

	require.Len(t, existing.Attributes, 2)
	assert.Equal(t, Attribute{Key: "note", Value: "local"}, existing.Attributes[0])
	assert.Equal(t, Attribute{Key: "size", Value: "M", Provider: "cde"}, existing.Attributes[1])

	require.Len(t, existing.Contents, 2)
	assert.Equal(t, int64(2), existing.Contents[0].ContentID)
	assert.Equal(t, int64(3), existing.Contents[1].ContentID)
	assert.Equal(t, "cde", existing.Contents[1].Provider)
}

func TestNaturalKey_String(t *testing.T) {
	p := &Product{OriginID: 17, Provider: "abc"}
	assert.Equal(t, "abc/17", p.Key().String())
}
