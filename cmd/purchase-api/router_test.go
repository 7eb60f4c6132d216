package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/purchase-request-api/internal/handler"
	"github.com/noah-isme/purchase-request-api/internal/middleware"
	"github.com/noah-isme/purchase-request-api/internal/repository"
	"github.com/noah-isme/purchase-request-api/internal/service"
	"github.com/noah-isme/purchase-request-api/pkg/config"
	"github.com/noah-isme/purchase-request-api/pkg/export"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := service.NewMetricsService()
	requestRepo := repository.NewRequestRepository()
	auditRepo := repository.NewAuditRepository()
	catalogRepo := repository.NewCatalogRepository(nil)
	cacheSvc := service.NewCacheService(nil, metrics, 0, nil, false)

	requests := service.NewRequestService(requestRepo, auditRepo, cacheSvc, nil, metrics, nil)
	require.NoError(t, requests.Seed(context.Background(), repository.SeedRequests()))

	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	registerRoutes(r, "/api/v1", routeHandlers{
		requests: handler.NewRequestHandler(requests,
			service.NewAuditService(requests, auditRepo, nil),
			service.NewExportService(requests, nil, nil, export.NewCSVExporter(), export.NewPDFExporter()),
			100),
		views:   handler.NewViewHandler(service.NewViewService(requestRepo, 10, 100, nil)),
		drafts:  handler.NewDraftHandler(service.NewDraftService(catalogRepo, requests, nil, metrics, nil, service.DraftConfig{}, nil)),
		catalog: handler.NewCatalogHandler(catalogRepo),
		metrics: handler.NewMetricsHandler(metrics, nil),
	})
	return r
}

func TestRegisterRoutesMountsPanelSurface(t *testing.T) {
	r := newTestRouter(t)

	mounted := map[string]bool{}
	for _, route := range r.Routes() {
		mounted[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/requests",
		"GET /api/v1/requests/:id",
		"POST /api/v1/requests/:id/actions/:action",
		"GET /api/v1/requests/:id/export",
		"GET /api/v1/requests/:id/audit-trail",
		"GET /api/v1/requests/:id/track-status",
		"POST /api/v1/requests/:id/drafts",
		"POST /api/v1/views",
		"PUT /api/v1/views/:id/page-size",
		"POST /api/v1/drafts",
		"PUT /api/v1/drafts/:id/rows/:row/fields/:field",
		"POST /api/v1/drafts/:id/submit",
		"GET /api/v1/catalog/items",
		"GET /api/v1/metrics/summary",
	} {
		assert.True(t, mounted[want], want)
	}
}

func TestRegisterRoutesServesSeededList(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/requests?pageSize=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":5`)
}

func TestFailureInjector(t *testing.T) {
	assert.Nil(t, failureInjector(0))

	always := failureInjector(1)
	require.NotNil(t, always)
	assert.Error(t, always())
}

func TestCORSConfigAllowsAllWithoutOrigins(t *testing.T) {
	cfg := corsConfig(nil)
	assert.True(t, cfg.AllowAllOrigins)
	assert.Contains(t, cfg.AllowHeaders, "X-Actor")

	cfg = corsConfig([]string{"http://panel.local"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"http://panel.local"}, cfg.AllowOrigins)
}

func TestNewNotifierWithoutWebsocketOnlyLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := &config.Config{Notifications: config.NotificationsConfig{WebsocketEnabled: false}}

	notifier, hub := newNotifier(context.Background(), cfg, zap.New(core))
	assert.Nil(t, hub)

	for i := 0; i < 20; i++ {
		notifier.Success(context.Background(), "Purchase request has been cancelled successfully.", "Request Cancelled")
	}
	assert.Equal(t, 20, logs.FilterMessage("notification").Len())
	assert.Zero(t, logs.FilterMessage("websocket broadcast dropped").Len())
}

func TestNewNotifierStartsHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &config.Config{Notifications: config.NotificationsConfig{WebsocketEnabled: true}}

	_, hub := newNotifier(ctx, cfg, zap.NewNop())
	require.NotNil(t, hub)
	cancel()
	hub.Wait()
}
