package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	integrationapp "github.com/bookingplatform/backend/internal/application/integration"
	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/domain/shared"
	"github.com/bookingplatform/backend/internal/infrastructure/logger"
	"github.com/bookingplatform/backend/internal/infrastructure/scheduler"
	"github.com/bookingplatform/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader lets a client make POST /adapters/sell safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

const defaultJobHistoryLimit = 20

// AdapterDirectory lists the registered provider names
type AdapterDirectory interface {
	Names() []string
}

// SnapshotReader serves the aggregated partner catalog
type SnapshotReader interface {
	Snapshot(ctx context.Context) ([]catalog.Product, error)
	RefreshSnapshot(ctx context.Context) ([]catalog.Product, error)
}

// SaleDispatcher routes checkout and sale lines to their owner
type SaleDispatcher interface {
	Checkout(ctx context.Context, req integration.CheckoutRequest) integration.LineOutcome
	Sell(ctx context.Context, reqs []integration.CheckoutRequest) (*integration.SaleResult, error)
}

// Reconciler runs one catalog reconciliation
type Reconciler interface {
	Reconcile(ctx context.Context) (*integrationapp.ReconcileReport, error)
}

// ReconcileJobQueue exposes the background reconcile scheduler
type ReconcileJobQueue interface {
	TriggerNow(trigger scheduler.JobTrigger) (*scheduler.ReconcileJob, error)
	GetJobHistory(limit int) []*scheduler.ReconcileJob
}

// AdapterHandler serves the partner-facing endpoints under /adapters
type AdapterHandler struct {
	BaseHandler
	adapters       AdapterDirectory
	snapshots      SnapshotReader
	dispatcher     SaleDispatcher
	reconciler     Reconciler
	jobs           ReconcileJobQueue
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
}

// NewAdapterHandler creates a new AdapterHandler
func NewAdapterHandler(
	adapters AdapterDirectory,
	snapshots SnapshotReader,
	dispatcher SaleDispatcher,
	reconciler Reconciler,
) *AdapterHandler {
	return &AdapterHandler{
		adapters:   adapters,
		snapshots:  snapshots,
		dispatcher: dispatcher,
		reconciler: reconciler,
	}
}

// SetIdempotencyStore enables Idempotency-Key handling on sales
func (h *AdapterHandler) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	h.idempotency = store
	h.idempotencyTTL = ttl
}

// SetJobQueue enables the background reconcile job endpoints
func (h *AdapterHandler) SetJobQueue(jobs ReconcileJobQueue) {
	h.jobs = jobs
}

// ListAdapters handles GET /adapters
func (h *AdapterHandler) ListAdapters(c *gin.Context) {
	h.Success(c, dto.AdapterListResponse{Adapters: h.adapters.Names()})
}

// ListProducts handles GET /adapters/products. ?refresh=true bypasses the snapshot cache.
func (h *AdapterHandler) ListProducts(c *gin.Context) {
	load := h.snapshots.Snapshot
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		load = h.snapshots.RefreshSnapshot
	}

	products, err := load(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Checkout handles POST /adapters/checkout. The line is checked, never committed.
func (h *AdapterHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	outcome := h.dispatcher.Checkout(c.Request.Context(), req.ToDomain())
	h.Success(c, dto.CheckoutResponse{Success: outcome.IsSold(), Outcome: outcome})
}

// Sell handles POST /adapters/sell: 200 when every line sold, 422 with the
// per-line result otherwise.
func (h *AdapterHandler) Sell(c *gin.Context) {
	var lines []dto.CheckoutLineRequest
	if err := c.ShouldBindJSON(&lines); err != nil {
		h.ValidationError(c, err)
		return
	}
	if len(lines) == 0 {
		h.ErrorWithCode(c, dto.ErrCodeValidation, integration.ErrEmptyOrder.Error())
		return
	}

	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" && h.idempotency != nil {
		fresh, err := h.idempotency.MarkProcessed(ctx, key, h.idempotencyTTL)
		if err != nil {
			logger.L(ctx).Error("Idempotency store unavailable", zap.Error(err))
			h.InternalError(c, "Sale deduplication is unavailable")
			return
		}
		if !fresh {
			h.HandleError(c, shared.ErrDuplicateRequest)
			return
		}
	}

	result, err := h.dispatcher.Sell(ctx, dto.SaleRequestToDomain(lines))
	if err != nil || result.SoldCount() == 0 {
		// nothing was committed, so a retry with the same key must go through
		h.releaseKey(ctx, key)
	}
	if err != nil {
		if errors.Is(err, integration.ErrEmptyOrder) {
			h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
			return
		}
		h.HandleError(c, err)
		return
	}

	if result.Success {
		h.Success(c, result)
		return
	}
	c.JSON(dto.GetHTTPStatus(dto.ErrCodeSaleIncomplete), dto.NewFailureResponse(
		dto.ErrCodeSaleIncomplete,
		"Not every line could be sold",
		getRequestID(c),
		result,
	))
}

func (h *AdapterHandler) releaseKey(ctx context.Context, key string) {
	if key == "" || h.idempotency == nil {
		return
	}
	if err := h.idempotency.Release(ctx, key); err != nil {
		logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
	}
}

// Reconcile handles POST /adapters/reconcile and runs reconciliation inline
func (h *AdapterHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// TriggerReconcileJob handles POST /adapters/reconcile/jobs
func (h *AdapterHandler) TriggerReconcileJob(c *gin.Context) {
	if h.jobs == nil {
		h.ErrorWithCode(c, dto.ErrCodeSchedulerUnavailable, "Reconcile scheduler not configured")
		return
	}

	job, err := h.jobs.TriggerNow(scheduler.TriggerManual)
	switch {
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.ErrorWithCode(c, dto.ErrCodeSchedulerUnavailable, err.Error())
	case errors.Is(err, scheduler.ErrJobQueueFull):
		h.ErrorWithCode(c, dto.ErrCodeJobQueueFull, err.Error())
	case err != nil:
		h.HandleError(c, err)
	default:
		h.Accepted(c, job)
	}
}

// ListReconcileJobs handles GET /adapters/reconcile/jobs?limit=N
func (h *AdapterHandler) ListReconcileJobs(c *gin.Context) {
	if h.jobs == nil {
		h.ErrorWithCode(c, dto.ErrCodeSchedulerUnavailable, "Reconcile scheduler not configured")
		return
	}

	limit := defaultJobHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	h.Success(c, h.jobs.GetJobHistory(limit))
}

// RegisterRoutes registers the adapter routes under the API group
func (h *AdapterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adapters := rg.Group("/adapters")
	adapters.GET("", h.ListAdapters)
	adapters.GET("/products", h.ListProducts)
	adapters.POST("/checkout", h.Checkout)
	adapters.POST("/sell", h.Sell)
	adapters.POST("/reconcile", h.Reconcile)
	adapters.GET("/reconcile/jobs", h.ListReconcileJobs)
	adapters.POST("/reconcile/jobs", h.TriggerReconcileJob)
}
