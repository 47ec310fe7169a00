package integration

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/logger"
	"github.com/bookingplatform/backend/internal/infrastructure/telemetry"
)

// OrderDispatcher routes checkout and sale lines either to the local store
// or to the partner adapter owning the product.
type OrderDispatcher struct {
	repo     catalog.ProductRepository
	registry integration.AdapterRegistry
	logger   *zap.Logger
	metrics  *telemetry.HubMetrics
}

// DispatcherOption configures an OrderDispatcher
type DispatcherOption func(*OrderDispatcher)

// WithDispatcherMetrics records outcome metrics
func WithDispatcherMetrics(m *telemetry.HubMetrics) DispatcherOption {
	return func(d *OrderDispatcher) {
		d.metrics = m
	}
}

// NewOrderDispatcher creates a new OrderDispatcher
func NewOrderDispatcher(
	repo catalog.ProductRepository,
	registry integration.AdapterRegistry,
	logger *zap.Logger,
	opts ...DispatcherOption,
) (*OrderDispatcher, error) {
	if repo == nil {
		return nil, integration.ErrRepositoryRequired
	}
	if registry == nil {
		return nil, integration.ErrRegistryRequired
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}
	d := &OrderDispatcher{repo: repo, registry: registry, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Checkout answers whether one line could be fulfilled. Internal stock is
// only inspected, never decremented.
func (d *OrderDispatcher) Checkout(ctx context.Context, req integration.CheckoutRequest) integration.LineOutcome {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatcher", "checkout",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity),
	)
	defer span.End()

	outcome := d.dispatch(ctx, req, false)
	d.finish(ctx, span, outcome)
	return outcome
}

// Sell commits every line in order. Lines are independent: a rejected or
// failed line neither stops the batch nor rolls back earlier lines.
func (d *OrderDispatcher) Sell(ctx context.Context, reqs []integration.CheckoutRequest) (*integration.SaleResult, error) {
	if len(reqs) == 0 {
		return nil, integration.ErrEmptyOrder
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "dispatcher", "sell",
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(reqs)))
	defer span.End()

	outcomes := make([]integration.LineOutcome, 0, len(reqs))
	for _, req := range reqs {
		lineCtx, lineSpan := telemetry.StartServiceSpan(ctx, "dispatcher", "sell_line",
			telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID),
			telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity),
		)
		outcome := d.dispatch(lineCtx, req, true)
		d.finish(lineCtx, lineSpan, outcome)
		lineSpan.End()
		outcomes = append(outcomes, outcome)
	}

	result := integration.NewSaleResult(outcomes)
	telemetry.SetAttributes(span, telemetry.SpanAttrSoldCount, result.SoldCount())
	return result, nil
}

// finish records the outcome on the span and in metrics
func (d *OrderDispatcher) finish(ctx context.Context, span trace.Span, outcome integration.LineOutcome) {
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(outcome.Status),
		telemetry.SpanAttrReason, string(outcome.Reason),
		telemetry.SpanAttrProvider, outcome.Provider,
	)
	if outcome.Status == integration.OutcomeFailed {
		telemetry.RecordError(span, outcome.Err)
	}
	d.metrics.RecordOutcome(ctx, outcome.Provider, string(outcome.Status), string(outcome.Reason))
}

// dispatch resolves one line to its terminal outcome. commit selects the
// sale path; otherwise the line is only checked.
func (d *OrderDispatcher) dispatch(ctx context.Context, req integration.CheckoutRequest, commit bool) integration.LineOutcome {
	log := logger.WithLogger(ctx, d.logger).With(zap.Int64("product_id", req.ProductID))

	if req.Quantity <= 0 {
		return integration.Rejected(req.ProductID, "",
			fmt.Errorf("%w: %d", catalog.ErrInvalidQuantity, req.Quantity))
	}

	product, err := d.repo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return integration.Failed(req.ProductID, "", err)
		}
		log.Error("Product lookup failed", zap.Error(err))
		return integration.Failed(req.ProductID, "", fmt.Errorf("%w: %v", catalog.ErrPersistence, err))
	}

	if product.IsInternal() {
		return d.dispatchInternal(ctx, log, product, req, commit)
	}
	return d.dispatchExternal(ctx, log, product, req, commit)
}

func (d *OrderDispatcher) dispatchInternal(
	ctx context.Context,
	log *logger.ContextLogger,
	product *catalog.Product,
	req integration.CheckoutRequest,
	commit bool,
) integration.LineOutcome {
	if !product.HasStock(req.Quantity) {
		return integration.Rejected(product.ID, "", fmt.Errorf("%w: requested %d, available %d",
			catalog.ErrInsufficientInventory, req.Quantity, product.AvailableQuantity))
	}
	if !commit {
		return integration.Sold(product.ID, "")
	}

	ok, err := d.repo.TryDecrement(ctx, product.ID, req.Quantity)
	if err != nil {
		log.Error("Stock decrement failed", zap.Error(err), zap.Int("quantity", req.Quantity))
		return integration.Failed(product.ID, "", fmt.Errorf("%w: %v", catalog.ErrPersistence, err))
	}
	if !ok {
		// Another sale took the stock between the read and the decrement
		return integration.Rejected(product.ID, "", fmt.Errorf("%w: stock changed concurrently",
			catalog.ErrInsufficientInventory))
	}
	return integration.Sold(product.ID, "")
}

func (d *OrderDispatcher) dispatchExternal(
	ctx context.Context,
	log *logger.ContextLogger,
	product *catalog.Product,
	req integration.CheckoutRequest,
	commit bool,
) integration.LineOutcome {
	provider := product.Provider
	log = log.With(zap.String("provider", provider))

	if err := product.CheckOwnership(); err != nil {
		log.Error("Product ownership is inconsistent", zap.Error(err))
		return integration.Failed(product.ID, provider, err)
	}

	adapter, err := d.registry.Resolve(provider)
	if err != nil {
		// An unregistered provider is a configuration fault, not a missing product
		cfgErr := fmt.Errorf("%w: provider %q is not registered (%v)", catalog.ErrConfiguration, provider, err)
		log.Error("No adapter for product provider", zap.Error(cfgErr))
		return integration.Failed(product.ID, provider, cfgErr)
	}

	line := integration.OrderLine{
		Product:        *product,
		Quantity:       req.Quantity,
		ItemTotalPrice: req.ItemTotalPrice,
	}

	var ok bool
	if commit {
		ok, err = adapter.Sell(ctx, line)
	} else {
		ok, err = adapter.Checkout(ctx, line)
	}
	if err != nil {
		log.Error("Partner call failed", zap.Error(err), zap.Bool("commit", commit))
		if !errors.Is(err, catalog.ErrUpstream) {
			err = fmt.Errorf("%w: %v", catalog.ErrUpstream, err)
		}
		return integration.Failed(product.ID, provider, err)
	}
	if !ok {
		return integration.Rejected(product.ID, provider, fmt.Errorf("%w: partner declined", catalog.ErrUpstream))
	}
	return integration.Sold(product.ID, provider)
}
