package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	integrationapp "github.com/bookingplatform/backend/internal/application/integration"
	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/cache"
	"github.com/bookingplatform/backend/internal/infrastructure/config"
	"github.com/bookingplatform/backend/internal/infrastructure/ecommerce"
	"github.com/bookingplatform/backend/internal/infrastructure/persistence"
	"github.com/bookingplatform/backend/internal/interfaces/http/handler"
	"github.com/bookingplatform/backend/internal/interfaces/http/middleware"
	"github.com/bookingplatform/backend/internal/interfaces/http/router"
)

// fakeCde serves a two-product catalog and accepts every sale
type fakeCde struct {
	server *httptest.Server
	sells  atomic.Int32
}

func newFakeCde(t *testing.T) *fakeCde {
	t.Helper()
	f := &fakeCde{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/product", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]ecommerce.CdeProduct{
			{OriginID: 11, Name: "Sea view room", Price: decimal.NewFromInt(150), Currency: "EUR", AvailableQuantity: 3, Owner: 500},
			{OriginID: 12, Name: "Garden room", Price: decimal.NewFromInt(90), Currency: "EUR", AvailableQuantity: 1, Owner: 500},
		})
	})
	mux.HandleFunc("POST /api/v1/product/sell", func(w http.ResponseWriter, r *http.Request) {
		f.sells.Add(1)
		_, _ = w.Write([]byte("true"))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

type hubFixture struct {
	engine *gin.Engine
	repo   *persistence.GormProductRepository
	cde    *fakeCde
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	testDB := NewTestDB(t)
	repo := persistence.NewGormProductRepository(testDB.DB)
	cde := newFakeCde(t)

	adapter, err := ecommerce.NewCdeAdapter(ecommerce.NewPartnerConfig(
		config.PartnerConfig{Enabled: true, BaseURL: cde.server.URL, Timeout: 2 * time.Second},
		config.BreakerConfig{MaxFailures: 5, OpenTimeout: time.Second},
	), log)
	require.NoError(t, err)

	registry, err := integrationapp.NewAdapterRegistry([]integration.ProviderAdapter{adapter}, log)
	require.NoError(t, err)
	aggregator, err := integrationapp.NewCatalogAggregator(registry, log)
	require.NoError(t, err)

	snapshots := cache.NewInMemorySnapshotCache()
	t.Cleanup(func() { _ = snapshots.Close() })
	catalogService, err := integrationapp.NewCatalogService(repo, aggregator, log,
		integrationapp.WithSnapshotCache(snapshots, time.Minute))
	require.NoError(t, err)
	dispatcher, err := integrationapp.NewOrderDispatcher(repo, registry, log)
	require.NoError(t, err)
	reconciler, err := integrationapp.NewCatalogReconciler(aggregator, repo, log)
	require.NoError(t, err)

	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           gin.TestMode,
		RequestTimeout: 10 * time.Second,
		MaxBodySize:    1 << 20,
		CORS:           middleware.DefaultCORSConfig(),
		Security:       middleware.DefaultSecurityConfig(),
	}, log)
	require.NoError(t, err)

	adapterHandler := handler.NewAdapterHandler(registry, catalogService, dispatcher, reconciler)
	adapterHandler.SetIdempotencyStore(store, time.Hour)

	r := router.NewRouter(engine)
	r.Register(handler.NewProductHandler(catalogService))
	r.Register(adapterHandler)
	r.Setup()

	return &hubFixture{engine: r.Engine(), repo: repo, cde: cde}
}

func (f *hubFixture) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestHubFlow_ReconcileThenSell(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newHubFixture(t)
	ctx := context.Background()

	local, err := catalog.NewInternalProduct("Hostel bed", "", 2, decimal.NewFromInt(25), "EUR", 1)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(ctx, local))

	code, resp := f.do(t, http.MethodPost, "/api/v1/adapters/reconcile", nil, nil)
	require.Equal(t, http.StatusOK, code)
	report := resp["data"].(map[string]any)
	assert.Equal(t, float64(2), report["inserted"])

	// a second run finds the natural keys and updates in place
	code, resp = f.do(t, http.MethodPost, "/api/v1/adapters/reconcile", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), resp["data"].(map[string]any)["updated"])

	all, err := f.repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	partner, err := f.repo.FindByNaturalKey(ctx, catalog.NaturalKey{OriginID: 11, Provider: ecommerce.CdeSourceName})
	require.NoError(t, err)

	lines := []map[string]any{
		{"productId": local.ID, "quantity": 2, "itemTotalPrice": "50"},
		{"productId": partner.ID, "quantity": 1, "itemTotalPrice": "150"},
	}
	headers := map[string]string{handler.IdempotencyKeyHeader: "order-1"}

	code, resp = f.do(t, http.MethodPost, "/api/v1/adapters/sell", lines, headers)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, true, resp["data"].(map[string]any)["success"])
	assert.Equal(t, int32(1), f.cde.sells.Load())

	stored, err := f.repo.FindByID(ctx, local.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.AvailableQuantity)

	// replaying the key is refused and nothing is sold twice
	code, resp = f.do(t, http.MethodPost, "/api/v1/adapters/sell", lines, headers)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ERR_DUPLICATE_REQUEST", resp["error"].(map[string]any)["code"])
	assert.Equal(t, int32(1), f.cde.sells.Load())

	// the local product is sold out now
	code, resp = f.do(t, http.MethodPost, "/api/v1/adapters/sell", lines[:1], nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	items := resp["data"].(map[string]any)["items"].([]any)
	assert.Equal(t, "INSUFFICIENT_INVENTORY", items[0].(map[string]any)["reason"])
}

func TestHubFlow_PartnerSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newHubFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/v1/adapters/products", nil, nil)
	require.Equal(t, http.StatusOK, code)
	products := resp["data"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, ecommerce.CdeSourceName, products[0].(map[string]any)["provider"])

	code, resp = f.do(t, http.MethodGet, "/api/v1/adapters", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{ecommerce.CdeSourceName}, resp["data"].(map[string]any)["adapters"])
}
