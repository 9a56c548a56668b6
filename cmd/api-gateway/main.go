package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/contest-seating-api/api/swagger"
	"github.com/noah-isme/contest-seating-api/internal/handler"
	internalmiddleware "github.com/noah-isme/contest-seating-api/internal/middleware"
	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/repository"
	"github.com/noah-isme/contest-seating-api/internal/service"
	"github.com/noah-isme/contest-seating-api/pkg/cache"
	"github.com/noah-isme/contest-seating-api/pkg/config"
	"github.com/noah-isme/contest-seating-api/pkg/database"
	"github.com/noah-isme/contest-seating-api/pkg/events"
	"github.com/noah-isme/contest-seating-api/pkg/jobs"
	"github.com/noah-isme/contest-seating-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/contest-seating-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/contest-seating-api/pkg/middleware/requestid"
	"github.com/noah-isme/contest-seating-api/pkg/storage"
)

// @title Contest Seating API
// @version 1.0.0
// @description Registration, room management and seat allocation for a school contest
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(redisClient, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.StatisticsTTL, logr, cacheRepo != nil)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue, logr)
		if err != nil {
			logr.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close() //nolint:errcheck

	validate := validator.New()

	schoolRepo := repository.NewSchoolRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	configurationRepo := repository.NewConfigurationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	configurationSvc := service.NewConfigurationService(configurationRepo, auditRepo, validate, logr, service.ConfigurationServiceConfig{
		Defaults: map[string]string{
			models.ConfigKeyRegistrationOpen: strconv.FormatBool(cfg.Registration.DefaultOpen),
			models.ConfigKeyCycleQuota:       strconv.Itoa(cfg.Registration.CycleQuota),
		},
	})
	schoolSvc := service.NewSchoolService(schoolRepo, auditRepo, cacheSvc, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, configurationSvc, auditRepo, publisher, cacheSvc, metricsSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, auditRepo, validate, logr)
	statisticsSvc := service.NewStatisticsService(registrationRepo, schoolRepo, cacheSvc, cfg.Cache.StatisticsTTL, logr)
	allocationSvc := service.NewAllocationService(registrationRepo, roomSvc, allocationRepo, auditRepo, publisher, cacheSvc, metricsSvc, logr, service.AllocationServiceConfig{
		CacheTTL: cfg.Cache.AllocationTTL,
	})

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(registrationRepo, schoolRepo, allocationSvc, exportStorage, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, metricsSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		JobTimeout: 5 * time.Minute,
		Logger:     logr,
	})
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exportSvc, validate, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	tokenVerifier := service.NewTokenVerifier(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	schoolHandler := handler.NewSchoolHandler(schoolSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	statisticsHandler := handler.NewStatisticsHandler(statisticsSvc)
	exportHandler := handler.NewExportHandler(exportJobSvc)
	configurationHandler := handler.NewConfigurationHandler(configurationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/status", registrationHandler.Status)
	api.POST("/registrations", registrationHandler.Submit)
	api.GET("/exports/download/:token", exportHandler.Download)

	public := api.Group("/public")
	public.GET("/counties", schoolHandler.Counties)
	public.GET("/localities", schoolHandler.Localities)
	public.GET("/schools", schoolHandler.Lookup)

	admin := api.Group("")
	admin.Use(internalmiddleware.JWT(tokenVerifier), internalmiddleware.RequireAdmin())

	admin.GET("/schools", schoolHandler.List)
	admin.POST("/schools", schoolHandler.Create)
	admin.POST("/schools/import", schoolHandler.Import)
	admin.GET("/schools/registered", statisticsHandler.RegisteredSchools)
	admin.GET("/schools/:id", schoolHandler.Get)
	admin.PUT("/schools/:id", schoolHandler.Update)
	admin.DELETE("/schools/:id", schoolHandler.Delete)
	admin.GET("/schools/:id/students", registrationHandler.SchoolStudents)
	admin.PUT("/registration-students/:id", registrationHandler.RenameStudent)
	admin.DELETE("/registration-students/:id", registrationHandler.DeleteStudent)

	admin.GET("/statistics", statisticsHandler.Overview)

	admin.GET("/rooms", roomHandler.List)
	admin.POST("/rooms", roomHandler.Create)
	admin.POST("/rooms/defaults", internalmiddleware.Audit(auditRepo, models.AuditActionRoomSeed, "room"), roomHandler.SeedDefaults)
	admin.PUT("/rooms/:id", roomHandler.Update)
	admin.DELETE("/rooms/:id", roomHandler.Delete)

	admin.GET("/allocations/summary", allocationHandler.Summary)
	admin.POST("/allocations", allocationHandler.Run)
	admin.GET("/allocations/latest", allocationHandler.Latest)

	admin.POST("/exports", internalmiddleware.Audit(auditRepo, models.AuditActionExportRequest, "export"), exportHandler.Create)
	admin.GET("/exports/:id", exportHandler.Status)

	admin.GET("/configuration", configurationHandler.List)
	admin.PUT("/configuration", configurationHandler.BulkUpdate)
	admin.GET("/configuration/:key", configurationHandler.Get)
	admin.PUT("/configuration/:key", configurationHandler.Update)
	admin.PUT("/registration-window", configurationHandler.SetRegistrationWindow)

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

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
