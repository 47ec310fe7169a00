package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/logger"
	"github.com/bookingplatform/backend/internal/infrastructure/telemetry"
)

// ReportStatus summarizes a reconciliation run
type ReportStatus string

const (
	ReportSuccess ReportStatus = "SUCCESS"
	ReportPartial ReportStatus = "PARTIAL"
	ReportFailed  ReportStatus = "FAILED"
)

// ReconcileReport counts what one reconciliation run did
type ReconcileReport struct {
	Products    int       `json:"products"`
	Inserted    int       `json:"inserted"`
	Updated     int       `json:"updated"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

// Status derives the run status from the counters. A run where every
// attempted product failed is FAILED; some failures make it PARTIAL.
func (r *ReconcileReport) Status() ReportStatus {
	switch {
	case r.Failed == 0:
		return ReportSuccess
	case r.Inserted+r.Updated == 0:
		return ReportFailed
	default:
		return ReportPartial
	}
}

// Duration returns the wall time of the run
func (r *ReconcileReport) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// CatalogReconciler upserts a partner catalog snapshot into the local store,
// keyed by (OriginID, Provider).
type CatalogReconciler struct {
	source  integration.CatalogSource
	repo    catalog.ProductRepository
	logger  *zap.Logger
	metrics *telemetry.HubMetrics
	now     func() time.Time
}

// ReconcilerOption configures a CatalogReconciler
type ReconcilerOption func(*CatalogReconciler)

// WithReconcilerMetrics records run metrics
func WithReconcilerMetrics(m *telemetry.HubMetrics) ReconcilerOption {
	return func(r *CatalogReconciler) {
		r.metrics = m
	}
}

// WithReconcilerClock overrides the time source
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *CatalogReconciler) {
		r.now = now
	}
}

// NewCatalogReconciler creates a new CatalogReconciler
func NewCatalogReconciler(
	source integration.CatalogSource,
	repo catalog.ProductRepository,
	logger *zap.Logger,
	opts ...ReconcilerOption,
) (*CatalogReconciler, error) {
	if source == nil {
		return nil, integration.ErrSourceRequired
	}
	if repo == nil {
		return nil, integration.ErrRepositoryRequired
	}
	if logger == nil {
		return nil, integration.ErrLoggerRequired
	}
	r := &CatalogReconciler{source: source, repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reconcile pulls one snapshot and upserts every product in it. If the
// snapshot cannot be obtained nothing is written and ErrNoSnapshot is
// returned. Per-product store failures are counted and the run goes on.
func (r *CatalogReconciler) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "reconcile")
	defer span.End()

	log := logger.WithLogger(ctx, r.logger)
	report := &ReconcileReport{StartedAt: r.now()}

	products, err := r.source.ListAll(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", catalog.ErrNoSnapshot, err)
		log.Warn("Catalog snapshot unavailable, reconciliation skipped", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}
	report.Products = len(products)

	for i := range products {
		if err := ctx.Err(); err != nil {
			report.CompletedAt = r.now()
			telemetry.RecordError(span, err)
			return report, err
		}
		r.reconcileOne(ctx, log, &products[i], report)
	}

	report.CompletedAt = r.now()
	status := report.Status()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemCount, report.Products,
		telemetry.SpanAttrOutcome, string(status),
	)
	r.metrics.RecordReconcile(ctx, string(status), report.Inserted, report.Updated, report.Failed)

	log.Info("Catalog reconciliation completed",
		zap.String("status", string(status)),
		zap.Int("products", report.Products),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration()),
	)
	return report, nil
}

func (r *CatalogReconciler) reconcileOne(ctx context.Context, log *logger.ContextLogger, src *catalog.Product, report *ReconcileReport) {
	key := src.Key()
	log = log.With(zap.String("provider", key.Provider), zap.Int64("origin_id", key.OriginID))

	if strings.TrimSpace(src.Provider) == "" || src.OriginID == catalog.NoOrigin {
		// Only partner records carry a natural key
		report.Skipped++
		log.Warn("Snapshot product without natural key skipped")
		return
	}

	now := r.now()
	existing, err := r.repo.FindByNaturalKey(ctx, key)
	switch {
	case err == nil:
		existing.ApplySnapshot(src, now)
		if err := r.repo.ReplaceSnapshot(ctx, existing); err != nil {
			report.Failed++
			log.Error("Failed to update reconciled product", zap.Int64("product_id", existing.ID), zap.Error(err))
			return
		}
		report.Updated++

	case errors.Is(err, catalog.ErrNotFound):
		fresh := *src
		fresh.ID = 0
		fresh.TagProvider(src.Provider)
		fresh.CreatedAt = now
		fresh.UpdatedAt = now
		if err := r.repo.Create(ctx, &fresh); err != nil {
			report.Failed++
			log.Error("Failed to insert reconciled product", zap.Error(err))
			return
		}
		report.Inserted++

	default:
		report.Failed++
		log.Error("Failed to look up reconciled product", zap.Error(err))
	}
}
