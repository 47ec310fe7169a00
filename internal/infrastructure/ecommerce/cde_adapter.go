package ecommerce

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
)

// CdeSourceName is the provider name of the Cde partner
const CdeSourceName = "cde"

// Cde API paths
const (
	cdeProductsPath = "/api/v1/product"
	cdeCheckoutPath = "/api/v1/product/checkout"
	cdeSellPath     = "/api/v1/product/sell"
)

// CdeAdapter implements ProviderAdapter for the Cde partner
type CdeAdapter struct {
	config *PartnerConfig
	client *partnerClient
	logger *zap.Logger
}

var _ integration.ProviderAdapter = (*CdeAdapter)(nil)

// NewCdeAdapter creates a new Cde adapter with the given configuration
func NewCdeAdapter(config *PartnerConfig, logger *zap.Logger) (*CdeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}
	logger = logger.With(zap.String("provider", CdeSourceName))
	return &CdeAdapter{
		config: config,
		client: newPartnerClient(CdeSourceName, config.BaseURL, config.Timeout, config.Breaker, logger),
		logger: logger,
	}, nil
}

// SourceName returns the provider name this adapter handles
func (a *CdeAdapter) SourceName() string {
	return CdeSourceName
}

// FetchCatalog pulls the Cde product list. Failures yield an empty slice.
func (a *CdeAdapter) FetchCatalog(ctx context.Context) []catalog.Product {
	var records []CdeProduct
	if err := a.client.getJSON(ctx, cdeProductsPath, &records); err != nil {
		a.logger.Warn("Partner catalog fetch failed", zap.Error(err))
		return []catalog.Product{}
	}

	products := make([]catalog.Product, 0, len(records))
	for _, r := range records {
		products = append(products, r.toProduct(CdeSourceName))
	}
	return products
}

// Checkout asks Cde whether the line can be fulfilled
func (a *CdeAdapter) Checkout(ctx context.Context, line integration.OrderLine) (bool, error) {
	return a.send(ctx, cdeCheckoutPath, line)
}

// Sell commits the line with Cde
func (a *CdeAdapter) Sell(ctx context.Context, line integration.OrderLine) (bool, error) {
	return a.send(ctx, cdeSellPath, line)
}

func (a *CdeAdapter) send(ctx context.Context, path string, line integration.OrderLine) (bool, error) {
	if a.config.AcceptAll {
		return true, nil
	}
	return a.client.postBool(ctx, path, CdeOrderRequest{
		OriginID:       line.Product.OriginID,
		Quantity:       line.Quantity,
		ItemTotalPrice: line.ItemTotalPrice,
		Currency:       line.Product.Currency,
	})
}
