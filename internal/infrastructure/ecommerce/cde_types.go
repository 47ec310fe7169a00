package ecommerce

import (
	"github.com/shopspring/decimal"

	"github.com/bookingplatform/backend/internal/domain/catalog"
)

// CdeAttribute is a key/value pair in the Cde product payload
type CdeAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CdeContent is a media entry in the Cde product payload
type CdeContent struct {
	ContentID   int64  `json:"contentId"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// CdeProduct is one record of GET /api/v1/product
type CdeProduct struct {
	OriginID          int64           `json:"originId"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	AvailableQuantity int             `json:"availableQuantity"`
	Owner             int64           `json:"owner"`
	ProductCategoryID int64           `json:"productCategoryId"`
	Attributes        []CdeAttribute  `json:"attributes"`
	Contents          []CdeContent    `json:"contents"`
}

// CdeOrderRequest is the body of the Cde checkout and sell calls
type CdeOrderRequest struct {
	OriginID       int64           `json:"originId"`
	Quantity       int             `json:"quantity"`
	ItemTotalPrice decimal.Decimal `json:"itemTotalPrice"`
	Currency       string          `json:"currency,omitempty"`
}

// toProduct maps a Cde record 1:1 onto a product tagged with provider
func (p CdeProduct) toProduct(provider string) catalog.Product {
	product := catalog.Product{
		OriginID:          p.OriginID,
		Provider:          provider,
		Name:              p.Name,
		Description:       p.Description,
		AvailableQuantity: p.AvailableQuantity,
		Price:             p.Price,
		Currency:          p.Currency,
		Owner:             p.Owner,
		CategoryID:        p.ProductCategoryID,
		Attributes:        make([]catalog.Attribute, 0, len(p.Attributes)),
		Contents:          make([]catalog.Content, 0, len(p.Contents)),
	}
	for _, a := range p.Attributes {
		product.Attributes = append(product.Attributes, catalog.Attribute{Key: a.Key, Value: a.Value})
	}
	for _, c := range p.Contents {
		product.Contents = append(product.Contents, catalog.Content{
			ContentID:   c.ContentID,
			Type:        c.Type,
			URL:         c.URL,
			Description: c.Description,
		})
	}
	product.TagProvider(provider)
	return product
}
