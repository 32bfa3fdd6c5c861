package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/calendario/calendario-api/api/swagger"
	"github.com/calendario/calendario-api/internal/calendar"
	"github.com/calendario/calendario-api/internal/handler"
	"github.com/calendario/calendario-api/internal/middleware"
	"github.com/calendario/calendario-api/internal/repository"
	"github.com/calendario/calendario-api/internal/service"
	"github.com/calendario/calendario-api/pkg/cache"
	"github.com/calendario/calendario-api/pkg/config"
	"github.com/calendario/calendario-api/pkg/database"
	"github.com/calendario/calendario-api/pkg/email"
	"github.com/calendario/calendario-api/pkg/logger"
	corsmiddleware "github.com/calendario/calendario-api/pkg/middleware/cors"
	reqidmiddleware "github.com/calendario/calendario-api/pkg/middleware/requestid"
)

// @title Calendario API
// @version 1.0.0
// @description Scheduling and booking service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	eventRepo := repository.NewEventRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Booking.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(userRepo, availabilityRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	availabilitySvc := service.NewAvailabilityService(
		availabilityRepo, eventRepo, meetingRepo,
		cacheSvc, metricsSvc, nil, logr,
		cfg.Booking.CacheTTL, cfg.Booking.Timezone,
	)

	eventSvc := service.NewEventService(eventRepo, userRepo, integrationRepo, nil, logr)

	googleProvider := calendar.NewGoogleProvider(cfg.Google, logr)
	integrationSvc := service.NewIntegrationService(integrationRepo, googleProvider, logr)

	notificationSvc := service.NewNotificationService(email.NewSMTPSender(cfg.Email), cfg.Notifications, logr)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	meetingSvc := service.NewMeetingService(
		meetingRepo, eventRepo, userRepo, integrationRepo,
		googleProvider, notificationSvc, availabilitySvc,
		metricsSvc, nil, logr,
	)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc)
	appRedirect := ""
	if len(cfg.CORS.AllowedOrigins) > 0 {
		appRedirect = cfg.CORS.AllowedOrigins[0]
	}
	integrationHandler := handler.NewIntegrationHandler(integrationSvc, appRedirect)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.JWT(authSvc)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		availability := api.Group("/availability")
		{
			availability.GET("/me", authRequired, availabilityHandler.GetMine)
			availability.PUT("/me", authRequired, availabilityHandler.UpdateMine)
			availability.GET("/public/:eventId", availabilityHandler.GetPublic)
		}

		events := api.Group("/events")
		{
			events.POST("", authRequired, eventHandler.Create)
			events.GET("", authRequired, eventHandler.List)
			events.PUT("/:eventId", authRequired, eventHandler.Update)
			events.PATCH("/:eventId/privacy", authRequired, eventHandler.TogglePrivacy)
			events.DELETE("/:eventId", authRequired, eventHandler.Delete)
			events.GET("/public/:username", eventHandler.PublicByUsername)
			events.GET("/public/:username/:slug", eventHandler.PublicEvent)
		}

		meetings := api.Group("/meetings")
		{
			meetings.GET("", authRequired, meetingHandler.List)
			meetings.GET("/export", authRequired, meetingHandler.Export)
			meetings.POST("/public", meetingHandler.CreateForGuest)
			meetings.PUT("/:meetingId/cancel", authRequired, meetingHandler.Cancel)
		}

		integrations := api.Group("/integrations")
		{
			integrations.GET("/status", authRequired, integrationHandler.Status)
			integrations.GET("/connect", authRequired, integrationHandler.ConnectURL)
			integrations.GET("/callback", integrationHandler.Callback)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
