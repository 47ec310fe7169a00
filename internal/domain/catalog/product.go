package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoOrigin marks a product that has no partner-side origin identifier.
const NoOrigin int64 = -1

// Attribute is a key/value pair describing a product, tagged with the
// provider that supplied it. Internal attributes carry a blank Provider.
type Attribute struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Provider string `json:"provider,omitempty"`
}

// Content is a media or descriptive asset attached to a product.
type Content struct {
	ContentID   int64  `json:"contentId"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Provider    string `json:"provider,omitempty"`
}

// NaturalKey identifies a partner product across reconciliation runs.
type NaturalKey struct {
	OriginID int64
	Provider string
}

// String returns a log-friendly form of the key
func (k NaturalKey) String() string {
	return fmt.Sprintf("%s/%d", k.Provider, k.OriginID)
}

// Product is the canonical product record.
// It is either internal (locally owned, stock held in the local store) or
// external (owned by a partner provider reached through an adapter).
type Product struct {
	ID                int64           `json:"id"`
	OriginID          int64           `json:"originId"`
	Provider          string          `json:"provider"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	AvailableQuantity int             `json:"availableQuantity"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	Owner             int64           `json:"owner"`
	CreatedBy         int64           `json:"createdBy"`
	CategoryID        int64           `json:"productCategoryId"`
	Attributes        []Attribute     `json:"attributes"`
	Contents          []Content       `json:"contents"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NewInternalProduct creates a locally owned product
func NewInternalProduct(name, description string, quantity int, price decimal.Decimal, currency string, owner int64) (*Product, error) {
	p := &Product{
		OriginID:          NoOrigin,
		Name:              strings.TrimSpace(name),
		Description:       description,
		AvailableQuantity: quantity,
		Price:             price,
		Currency:          strings.ToUpper(strings.TrimSpace(currency)),
		Owner:             owner,
		CreatedBy:         owner,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.EnsureCollections()
	return p, nil
}

// IsInternal reports whether the product is locally owned. The provider must
// be exactly empty; a whitespace provider is an integrity fault, not local stock.
func (p *Product) IsInternal() bool {
	return p.Provider == "" && p.OriginID == NoOrigin
}

// Key returns the reconciliation natural key
func (p *Product) Key() NaturalKey {
	return NaturalKey{OriginID: p.OriginID, Provider: p.Provider}
}

// CheckOwnership verifies that Provider and OriginID agree with each other.
// A whitespace-only provider, a blank provider with a partner origin, or a
// provider without one is a configuration error.
func (p *Product) CheckOwnership() error {
	hasProvider := strings.TrimSpace(p.Provider) != ""
	hasOrigin := p.OriginID != NoOrigin
	switch {
	case p.Provider != "" && !hasProvider:
		return fmt.Errorf("%w: product %d has a blank provider %q", ErrConfiguration, p.ID, p.Provider)
	case !hasProvider && hasOrigin:
		return fmt.Errorf("%w: product %d has origin %d but no provider", ErrConfiguration, p.ID, p.OriginID)
	case hasProvider && !hasOrigin:
		return fmt.Errorf("%w: product %d is owned by %q but has no origin id", ErrConfiguration, p.ID, p.Provider)
	}
	return nil
}

// HasStock reports whether the snapshot quantity covers the requested amount
func (p *Product) HasStock(quantity int) bool {
	return p.AvailableQuantity >= quantity
}

// Validate checks the fields that every stored product must satisfy
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrProductNameRequired
	}
	if len(p.Name) > 200 {
		return ErrProductNameTooLong
	}
	if p.AvailableQuantity < 0 {
		return ErrNegativeQuantity
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Currency != "" && len(p.Currency) != 3 {
		return ErrInvalidCurrency
	}
	for _, a := range p.Attributes {
		if strings.TrimSpace(a.Key) == "" {
			return ErrAttributeKeyRequired
		}
	}
	return nil
}

// EnsureCollections replaces nil child collections with empty ones.
func (p *Product) EnsureCollections() {
	if p.Attributes == nil {
		p.Attributes = []Attribute{}
	}
	if p.Contents == nil {
		p.Contents = []Content{}
	}
}

// TagProvider stamps the provider onto the product and every child record.
func (p *Product) TagProvider(provider string) {
	p.Provider = provider
	p.EnsureCollections()
	for i := range p.Attributes {
		p.Attributes[i].Provider = provider
	}
	for i := range p.Contents {
		p.Contents[i].Provider = provider
	}
}

// ApplySnapshot overwrites the mutable fields with the values from a fresh
// partner record and replaces the children tagged with that record's
// provider. Children from other providers are preserved.
func (p *Product) ApplySnapshot(src *Product, now time.Time) {
	p.Name = src.Name
	p.Description = src.Description
	p.Price = src.Price
	p.Currency = src.Currency
	p.OriginID = src.OriginID
	p.Provider = src.Provider
	p.AvailableQuantity = src.AvailableQuantity
	p.Owner = src.Owner
	p.UpdatedAt = now

	attrs := make([]Attribute, 0, len(p.Attributes)+len(src.Attributes))
	for _, a := range p.Attributes {
		if a.Provider != src.Provider {
			attrs = append(attrs, a)
		}
	}
	for _, a := range src.Attributes {
		a.Provider = src.Provider
		attrs = append(attrs, a)
	}
	p.Attributes = attrs

	contents := make([]Content, 0, len(p.Contents)+len(src.Contents))
	for _, c := range p.Contents {
		if c.Provider != src.Provider {
			contents = append(contents, c)
		}
	}
	for _, c := range src.Contents {
		c.Provider = src.Provider
		contents = append(contents, c)
	}
	p.Contents = contents
}

// Category is a product classification.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
