package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tawhid3482/geniustutors-console/api/swagger"
	"github.com/tawhid3482/geniustutors-console/internal/backend"
	"github.com/tawhid3482/geniustutors-console/internal/handler"
	"github.com/tawhid3482/geniustutors-console/internal/middleware"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/internal/repository"
	"github.com/tawhid3482/geniustutors-console/internal/service"
	"github.com/tawhid3482/geniustutors-console/pkg/cache"
	"github.com/tawhid3482/geniustutors-console/pkg/config"
	"github.com/tawhid3482/geniustutors-console/pkg/database"
	"github.com/tawhid3482/geniustutors-console/pkg/logger"
	corsmiddleware "github.com/tawhid3482/geniustutors-console/pkg/middleware/cors"
	reqidmiddleware "github.com/tawhid3482/geniustutors-console/pkg/middleware/requestid"
	"github.com/tawhid3482/geniustutors-console/pkg/schedule"
)

// @title GeniusTutors Console API
// @version 1.0.0
// @description Admin console backend for the GeniusTutors tutoring platform
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type handlers struct {
	auth     *handler.AuthHandler
	menu     *handler.MenuHandler
	views    *handler.ViewHandler
	taxonomy *handler.TaxonomyHandler
	audit    *handler.AuditHandler
	metrics  *handler.MetricsHandler
}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient redis.UniversalClient
	if client, err := cache.NewRedis(ctx, cfg.Redis, 5*time.Second); err != nil {
		logr.Warn("redis unavailable, running without cache", zap.Error(err))
	} else {
		redisClient = client
		defer client.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	ticker := schedule.NewTicker(logr)

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "console:")

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Taxonomy.CacheTTL, logr, redisClient != nil)
	auditSvc := service.NewAuditService(auditRepo, metrics, logr, service.AuditConfig{
		Workers: cfg.Audit.Workers,
		Retries: cfg.Audit.Retries,
	})
	authSvc := service.NewAuthService(userRepo, cacheSvc, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "geniustutors-console",
	})

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	}, backend.WithObserver(metrics), backend.WithLogger(logr))
	taxonomySvc := service.NewTaxonomyService(backend.NewTaxonomy(client), cacheSvc, cfg.Taxonomy.CacheTTL, logr)
	menuSvc := service.NewMenuService(nil)
	viewSvc := service.NewViewService(client, taxonomySvc, menuSvc, auditSvc, metrics, ticker, validate, logr, service.ViewConfig{
		SearchDebounce:  cfg.Views.SearchDebounce,
		DefaultPageSize: cfg.Views.DefaultPageSize,
		PollInterval:    cfg.Views.PollInterval,
		IdleTTL:         cfg.Views.IdleTTL,
		ReapInterval:    cfg.Views.ReapInterval,
	})

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	auditSvc.Start(workerCtx)
	ticker.Start()
	if err := viewSvc.Start(); err != nil {
		logr.Fatal("view reaper not scheduled", zap.Error(err))
	}

	checks := map[string]handler.Pinger{"database": userRepo}
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}
	h := handlers{
		auth:     handler.NewAuthHandler(authSvc),
		menu:     handler.NewMenuHandler(menuSvc),
		views:    handler.NewViewHandler(viewSvc, cfg.Exports.Enabled, logr),
		taxonomy: handler.NewTaxonomyHandler(taxonomySvc),
		audit:    handler.NewAuditHandler(auditSvc),
		metrics:  handler.NewMetricsHandler(metrics, checks, logr),
	}
	r := newRouter(cfg, logr, metrics, authSvc, auditSvc, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	viewSvc.Stop()
	ticker.Stop(shutdownCtx)
	auditSvc.Stop(shutdownCtx)
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, audit middleware.AuditRecorder, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.POST("/auth/logout", h.auth.Logout)
	secured.GET("/auth/me", h.auth.Me)
	secured.GET("/menu", h.menu.Menu)

	secured.GET("/taxonomy/categories", h.taxonomy.Categories)
	secured.GET("/taxonomy/districts", h.taxonomy.Districts)

	views := secured.Group("/views")
	views.GET("", h.views.List)
	views.POST("", h.views.Create)
	views.GET("/:id", h.views.Get)
	views.PATCH("/:id/query", h.views.Query)
	views.POST("/:id/keystrokes", h.views.Keystroke)
	views.POST("/:id/refresh", h.views.Refresh)
	views.DELETE("/:id", h.views.Close)
	views.GET("/:id/export", middleware.Audit(audit, models.AuditActionExport, "views"), h.views.Export)

	views.POST("/:id/edits/:eid", h.views.OpenEdit)
	views.PATCH("/:id/edits/:eid", h.views.ProposeEdit)
	views.POST("/:id/edits/:eid/submit", h.views.SubmitEdit)
	views.DELETE("/:id/edits/:eid", h.views.CloseEdit)
	views.POST("/:id/edits/:eid/tags/:group", h.views.EditTags)
	views.GET("/:id/edits/:eid/tags/:group/options", h.views.TagOptions)

	views.POST("/:id/deletions/:eid", h.views.RequestDelete)
	views.POST("/:id/deletions/:eid/confirm", h.views.ConfirmDelete)
	views.DELETE("/:id/deletions/:eid", h.views.CancelDelete)

	managers := secured.Group("")
	managers.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	managers.DELETE("/taxonomy/cache", h.taxonomy.Invalidate)
	managers.GET("/metrics/summary", h.metrics.Summary)

	admins := secured.Group("")
	admins.Use(middleware.RequireRoles(models.RoleSuperAdmin))
	admins.GET("/audit-logs", h.audit.List)

	return r
}
