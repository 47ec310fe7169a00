package ecommerce

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
)

// AbcSourceName is the provider name of the Abc partner
const AbcSourceName = "abc"

// Abc API paths
const (
	abcItemsPath    = "/catalog/items"
	abcCheckoutPath = "/catalog/orders/checkout"
	abcOrdersPath   = "/catalog/orders"
)

// AbcAdapter implements ProviderAdapter for the Abc partner, whose catalog
// uses minor-unit prices and a spec map instead of attribute lists.
type AbcAdapter struct {
	config *PartnerConfig
	client *partnerClient
	logger *zap.Logger
}

var _ integration.ProviderAdapter = (*AbcAdapter)(nil)

// NewAbcAdapter creates a new Abc adapter with the given configuration
func NewAbcAdapter(config *PartnerConfig, logger *zap.Logger) (*AbcAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}
	logger = logger.With(zap.String("provider", AbcSourceName))
	return &AbcAdapter{
		config: config,
		client: newPartnerClient(AbcSourceName, config.BaseURL, config.Timeout, config.Breaker, logger),
		logger: logger,
	}, nil
}

// SourceName returns the provider name this adapter handles
func (a *AbcAdapter) SourceName() string {
	return AbcSourceName
}

// FetchCatalog pulls the Abc item envelope. Failures yield an empty slice.
func (a *AbcAdapter) FetchCatalog(ctx context.Context) []catalog.Product {
	var resp AbcCatalogResponse
	if err := a.client.getJSON(ctx, abcItemsPath, &resp); err != nil {
		a.logger.Warn("Partner catalog fetch failed", zap.Error(err))
		return []catalog.Product{}
	}

	products := make([]catalog.Product, 0, len(resp.Items))
	for _, item := range resp.Items {
		products = append(products, item.toProduct(AbcSourceName))
	}
	return products
}

// Checkout asks Abc whether the line can be fulfilled
func (a *AbcAdapter) Checkout(ctx context.Context, line integration.OrderLine) (bool, error) {
	return a.send(ctx, abcCheckoutPath, line)
}

// Sell places the order with Abc
func (a *AbcAdapter) Sell(ctx context.Context, line integration.OrderLine) (bool, error) {
	return a.send(ctx, abcOrdersPath, line)
}

func (a *AbcAdapter) send(ctx context.Context, path string, line integration.OrderLine) (bool, error) {
	if a.config.AcceptAll {
		return true, nil
	}
	return a.client.postBool(ctx, path, AbcOrderRequest{
		SkuID:        line.Product.OriginID,
		Quantity:     line.Quantity,
		TotalCents:   DecimalToCents(line.ItemTotalPrice),
		CurrencyCode: line.Product.Currency,
	})
}
