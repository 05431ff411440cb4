package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	billingapp "github.com/appsnxt/platform/internal/application/billing"
	catalogapp "github.com/appsnxt/platform/internal/application/catalog"
	identityapp "github.com/appsnxt/platform/internal/application/identity"
	"github.com/appsnxt/platform/internal/infrastructure/auth"
	"github.com/appsnxt/platform/internal/infrastructure/cache"
	"github.com/appsnxt/platform/internal/infrastructure/config"
	"github.com/appsnxt/platform/internal/infrastructure/event"
	"github.com/appsnxt/platform/internal/infrastructure/logger"
	"github.com/appsnxt/platform/internal/infrastructure/persistence"
	"github.com/appsnxt/platform/internal/infrastructure/storage"
	"github.com/appsnxt/platform/internal/infrastructure/tasks"
	"github.com/appsnxt/platform/internal/infrastructure/telemetry"
	"github.com/appsnxt/platform/internal/interfaces/http/handler"
	"github.com/appsnxt/platform/internal/interfaces/http/middleware"
	"github.com/appsnxt/platform/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/appsnxt/platform/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			AppsNxt Platform API
//	@version		1.0
//	@description	SaaS platform backend: product catalog, subscriptions and account management.

//	@contact.name	Platform Team
//	@contact.url	https://github.com/appsnxt/platform

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting platform backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry: traces, metrics, log export and continuous profiling.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Warn("Profiler disabled", zap.Error(err))
	} else if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, cfg.App.Version, telemetry.MeterOptions{}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewPlatformMetrics(meterProvider)
	if err != nil {
		log.Fatal("Failed to register platform metrics", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, cfg.App.Version, log)
	if err != nil {
		log.Warn("Log export disabled", zap.Error(err))
	} else if loggerProvider.IsEnabled() {
		log = telemetry.AttachExportCore(log,
			telemetry.NewZapBridgeCore(loggerProvider, cfg.Telemetry.ServiceName, zapcore.InfoLevel))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down logger provider", zap.Error(err))
			}
		}()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Query tracing disabled", zap.Error(err))
	}
	log.Info("Database connected")

	// Redis backs the catalog cache, the token blacklist and the task queue
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	featureRepo := persistence.NewGormProductFeatureRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	subscriptionEventRepo := persistence.NewGormSubscriptionEventRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	txManager := persistence.NewTransactionManager(db)

	catalogCache := cache.NewCatalogCache(redisClient, cache.WithCacheLogger(log))

	var objectStorage catalogapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Info("Object storage disabled, uploads are discarded")
	}

	// Auth provider integration
	providerClient := auth.NewProviderClient(cfg.Auth)
	tokenVerifier := auth.NewTokenVerifier(cfg.Auth)
	tokenBlacklist := auth.NewRedisTokenBlacklist(redisClient)

	// Outbox relay drains pending task entries onto the Redis queue
	enqueuer := tasks.NewRedisEnqueuer(redisClient, cfg.Tasks.QueueKey)
	if cfg.Tasks.RelayEnabled {
		relayCfg := tasks.DefaultRelayConfig()
		if cfg.Tasks.BatchSize > 0 {
			relayCfg.BatchSize = cfg.Tasks.BatchSize
		}
		if cfg.Tasks.PollInterval > 0 {
			relayCfg.PollInterval = cfg.Tasks.PollInterval
		}
		relayCfg.CleanupEnabled = cfg.Tasks.CleanupEnabled
		if cfg.Tasks.CleanupRetention > 0 {
			relayCfg.CleanupRetention = cfg.Tasks.CleanupRetention
		}
		relay := tasks.NewRelay(outboxRepo, enqueuer, relayCfg, log)
		if err := relay.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox relay", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := relay.Stop(stopCtx); err != nil {
				log.Error("Error stopping outbox relay", zap.Error(err))
			}
		}()
		log.Info("Outbox relay started",
			zap.Int("batch_size", relayCfg.BatchSize),
			zap.Duration("poll_interval", relayCfg.PollInterval),
		)
	}

	// In-process event bus for cross-cutting subscribers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogger(log))
	eventBus.Subscribe(billingapp.NewSubscriptionMetricsHandler(metrics, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	productService := catalogapp.NewProductService(productRepo, featureRepo, subscriptionRepo, catalogCache, objectStorage, txManager, eventBus, log)
	featureService := catalogapp.NewFeatureService(featureRepo, productRepo, catalogCache, log)
	subscriptionService := billingapp.NewSubscriptionService(subscriptionRepo, subscriptionEventRepo, productRepo, outboxRepo, txManager, eventBus, log)
	dashboardService := billingapp.NewDashboardService(subscriptionRepo, productRepo, userRepo, log)
	authService := identityapp.NewAuthService(providerClient, userRepo, tokenVerifier, tokenBlacklist, outboxRepo, txManager, eventBus, metrics, log)
	userService := identityapp.NewUserService(userRepo, tokenBlacklist, log)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	productHandler := handler.NewProductHandler(productService)
	featureHandler := handler.NewFeatureHandler(featureService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	userHandler := handler.NewUserHandler(userService)
	systemHandler := handler.NewSystemHandler(&cfg.App, db, redisClient)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.RequestMetrics(metrics))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Stricter per-IP limiting for the credential endpoints
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limit := middleware.RateLimitByKey(authLimiter, func(c *gin.Context) string {
			return "auth:" + c.ClientIP()
		})
		engine.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
				limit(c)
				return
			}
			c.Next()
		})
	}

	authConfig := middleware.DefaultAuthConfig(tokenVerifier)
	authConfig.Blacklist = tokenBlacklist
	authConfig.Logger = log
	authConfig.SkipPaths = append(authConfig.SkipPaths, "/api/v1/system/info")
	engine.Use(middleware.AuthMiddlewareWithConfig(authConfig))
	engine.Use(middleware.ResolveUser(userRepo, log))

	// Health endpoint lives outside the versioned API
	engine.GET("/health", systemHandler.Health)

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(authHandler).
		Register(productHandler).
		Register(featureHandler).
		Register(subscriptionHandler).
		Register(dashboardHandler).
		Register(userHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.ForceFlush(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := meterProvider.ForceFlush(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
