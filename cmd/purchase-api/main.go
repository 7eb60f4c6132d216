package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/purchase-request-api/api/swagger"
	"github.com/noah-isme/purchase-request-api/internal/handler"
	"github.com/noah-isme/purchase-request-api/internal/middleware"
	"github.com/noah-isme/purchase-request-api/internal/repository"
	"github.com/noah-isme/purchase-request-api/internal/service"
	internalws "github.com/noah-isme/purchase-request-api/internal/websocket"
	"github.com/noah-isme/purchase-request-api/pkg/cache"
	"github.com/noah-isme/purchase-request-api/pkg/config"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
	"github.com/noah-isme/purchase-request-api/pkg/export"
	"github.com/noah-isme/purchase-request-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/purchase-request-api/pkg/middleware/requestid"
)

// @title Purchase Request API
// @version 1.0.0
// @description Admin panel backend for purchase requests: list views, multi-row forms and status actions.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metricsSvc := service.NewMetricsService()

	var (
		cacheRepo service.CacheRepository
		ready     func() error
	)
	if cfg.ViewCache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client)
			ready = redisProbe(client)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.ViewCache.TTL, logr, cacheRepo != nil)

	notifier, hub := newNotifier(ctx, cfg, logr)

	requestRepo := repository.NewRequestRepository()
	auditRepo := repository.NewAuditRepository()
	catalogRepo := repository.NewCatalogRepository(nil)

	requestSvc := service.NewRequestService(requestRepo, auditRepo, cacheSvc, notifier, metricsSvc, logr)
	if err := requestSvc.Seed(ctx, repository.SeedRequests()); err != nil {
		logr.Fatal("failed to seed purchase requests", zap.Error(err))
	}

	auditSvc := service.NewAuditService(requestSvc, auditRepo, logr)
	exportSvc := service.NewExportService(requestSvc, notifier, logr, export.NewCSVExporter(), export.NewPDFExporter())
	viewSvc := service.NewViewService(requestRepo, cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize, logr)
	draftSvc := service.NewDraftService(catalogRepo, requestSvc, notifier, metricsSvc, service.NewDraftValidator(), service.DraftConfig{
		SubmitDelay: cfg.Submit.Delay,
		Failure:     failureInjector(cfg.Submit.FailureRate),
	}, logr)

	metricsHandler := handler.NewMetricsHandler(metricsSvc, ready)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Use(middleware.WithResponseMeta())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if hub != nil {
		r.GET("/ws", hub.Serve)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg.APIPrefix, routeHandlers{
		requests: handler.NewRequestHandler(requestSvc, auditSvc, exportSvc, cfg.Pagination.MaxPageSize),
		views:    handler.NewViewHandler(viewSvc),
		drafts:   handler.NewDraftHandler(draftSvc),
		catalog:  handler.NewCatalogHandler(catalogRepo),
		metrics:  metricsHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	if hub != nil {
		hub.Wait()
	}
	logr.Info("server exited")
}

// newNotifier starts the websocket hub when notifications over /ws are enabled. Otherwise
// notifications are only logged and the returned hub is nil.
func newNotifier(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*service.NotificationService, *internalws.Hub) {
	if !cfg.Notifications.WebsocketEnabled {
		return service.NewNotificationService(nil, logr), nil
	}
	hub := internalws.NewHub(cfg.CORS.AllowedOrigins, logr)
	go hub.Run(ctx)
	return service.NewNotificationService(hub, logr), hub
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID", "X-Actor")
	cfg.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	return cfg
}

func redisProbe(client *redis.Client) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// failureInjector fails roughly rate of all saves.
func failureInjector(rate float64) func() error {
	if rate <= 0 {
		return nil
	}
	return func() error {
		if rand.Float64() < rate {
			return appErrors.ErrSimulatedFailure
		}
		return nil
	}
}
