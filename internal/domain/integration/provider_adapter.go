package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Adapter Errors
// ---------------------------------------------------------------------------

var (
	// Registry errors
	ErrAdapterNotFound  = fmt.Errorf("%w: adapter not registered", catalog.ErrNotFound)
	ErrDuplicateAdapter = errors.New("integration: duplicate adapter source name")
	ErrNilAdapter       = errors.New("integration: adapter cannot be nil")
	ErrEmptySourceName  = errors.New("integration: adapter source name cannot be empty")
	ErrNilAdapterSet    = errors.New("integration: adapter set cannot be nil")

	// Construction errors
	ErrLoggerRequired     = errors.New("integration: logger is required")
	ErrRepositoryRequired = errors.New("integration: product repository is required")
	ErrSourceRequired     = errors.New("integration: catalog source is required")
	ErrRegistryRequired   = errors.New("integration: adapter registry is required")

	// Dispatch errors
	ErrEmptyOrder = errors.New("integration: order must contain at least one item")

	// Partner errors
	ErrPartnerNotConfigured   = errors.New("integration: partner adapter not configured")
	ErrPartnerUnavailable     = fmt.Errorf("%w: partner temporarily unavailable", catalog.ErrUpstream)
	ErrPartnerRequestFailed   = fmt.Errorf("%w: partner request failed", catalog.ErrUpstream)
	ErrPartnerInvalidResponse = fmt.Errorf("%w: invalid partner response", catalog.ErrUpstream)
)

// ---------------------------------------------------------------------------
// ProviderAdapter port
// ---------------------------------------------------------------------------

// OrderLine is the payload forwarded to a partner for checkout or sale.
type OrderLine struct {
	Product        catalog.Product
	Quantity       int
	ItemTotalPrice decimal.Decimal
}

// ProviderAdapter is implemented once per partner provider.
//
// FetchCatalog never fails: transport and decoding problems are logged by the
// adapter and surface as an empty slice. Every returned product, attribute
// and content is tagged with SourceName.
//
// Checkout and Sell return (false, nil) when the partner answers negatively
// or with a payload that is not a boolean, and a non-nil error when the
// partner could not be reached.
type ProviderAdapter interface {
	// SourceName returns the stable provider name used as the registry key
	SourceName() string

	// FetchCatalog retrieves and translates the partner catalog
	FetchCatalog(ctx context.Context) []catalog.Product

	// Checkout asks the partner whether the line can be fulfilled
	Checkout(ctx context.Context, line OrderLine) (bool, error)

	// Sell commits the line with the partner
	Sell(ctx context.Context, line OrderLine) (bool, error)
}

// AdapterRegistry resolves provider names to adapters.
type AdapterRegistry interface {
	// Resolve looks up an adapter by provider name, case-insensitively.
	// Returns ErrAdapterNotFound for unknown names.
	Resolve(name string) (ProviderAdapter, error)

	// List returns the registered adapters in registration order
	List() []ProviderAdapter

	// Names returns the normalized registered names in registration order
	Names() []string
}

// CatalogSource produces a full catalog snapshot.
type CatalogSource interface {
	ListAll(ctx context.Context) ([]catalog.Product, error)
}

// NormalizeSourceName returns the registry key for a provider name
func NormalizeSourceName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
