package ecommerce

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookingplatform/backend/internal/domain/catalog"
)

// AbcMedia is a media entry of an Abc catalog item
type AbcMedia struct {
	ID      int64  `json:"id"`
	Kind    string `json:"kind"`
	Href    string `json:"href"`
	Caption string `json:"caption"`
}

// AbcItem is one entry of GET /catalog/items
type AbcItem struct {
	SkuID          int64             `json:"sku_id"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	CurrencyCode   string            `json:"currency_code"`
	Stock          int               `json:"stock"`
	SellerID       int64             `json:"seller_id"`
	Category       int64             `json:"category"`
	Specs          map[string]string `json:"specs"`
	Media          []AbcMedia        `json:"media"`
}

// AbcCatalogResponse is the envelope returned by GET /catalog/items
type AbcCatalogResponse struct {
	Items []AbcItem `json:"items"`
}

// AbcOrderRequest is the body of the Abc checkout and order calls
type AbcOrderRequest struct {
	SkuID        int64  `json:"sku_id"`
	Quantity     int    `json:"quantity"`
	TotalCents   int64  `json:"total_cents"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

// CentsToDecimal converts a minor-unit amount to a decimal
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents converts a decimal amount to minor units, rounding half away from zero
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// toProduct translates an Abc item onto a product tagged with provider.
// Specs become attributes sorted by key.
func (i AbcItem) toProduct(provider string) catalog.Product {
	product := catalog.Product{
		OriginID:          i.SkuID,
		Provider:          provider,
		Name:              i.Title,
		Description:       i.Summary,
		AvailableQuantity: i.Stock,
		Price:             CentsToDecimal(i.UnitPriceCents),
		Currency:          strings.ToUpper(i.CurrencyCode),
		Owner:             i.SellerID,
		CategoryID:        i.Category,
		Attributes:        make([]catalog.Attribute, 0, len(i.Specs)),
		Contents:          make([]catalog.Content, 0, len(i.Media)),
	}

	keys := make([]string, 0, len(i.Specs))
	for k := range i.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		product.Attributes = append(product.Attributes, catalog.Attribute{Key: k, Value: i.Specs[k]})
	}

	for _, m := range i.Media {
		product.Contents = append(product.Contents, catalog.Content{
			ContentID:   m.ID,
			Type:        m.Kind,
			URL:         m.Href,
			Description: m.Caption,
		})
	}
	product.TagProvider(provider)
	return product
}
