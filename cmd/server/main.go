package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/auth"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/cache"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/config"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/logger"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/persistence"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/scheduler"
	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/handler"
	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/middleware"
	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/router"
)

//	@title			Billing API
//	@version		1.0
//	@description	Monthly billing and proration engine for the account hierarchy

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting billing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	rateRepo := persistence.NewRateEntryRepository(db.DB)
	obligationRepo := persistence.NewPaymentObligationRepository(db.DB)
	proofRepo := persistence.NewPaymentProofRepository(db.DB)
	accountRepo := persistence.NewAccountRepository(db.DB)
	jobRepo := scheduler.NewGenerationJobRepository(db.DB)

	// Census cache: Redis when reachable, in-memory fallback otherwise
	cacheFactory := cache.NewCensusCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	censusCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create census cache", zap.Error(err))
	}
	defer func() {
		if closer, ok := censusCache.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	// Application services
	censusCounter := billing.NewCensusCounter(accountRepo)
	censusService := appbilling.NewCensusService(censusCounter, censusCache, cfg.Billing.CensusCacheTTL, log)
	rateService := appbilling.NewRateService(rateRepo, log)
	recalcService := appbilling.NewRecalculationService(rateRepo, censusService, accountRepo, log)
	obligationService := appbilling.NewObligationService(obligationRepo, recalcService, censusService, log)
	generationService := appbilling.NewGenerationService(
		obligationRepo, rateRepo, accountRepo, cfg.Billing.GenerationWorkers, log,
	)
	proofService := appbilling.NewProofService(proofRepo, obligationRepo, accountRepo, log)

	// JWT validation; tokens are minted by the identity service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Monthly generation scheduler
	var cron *scheduler.GenerationCronScheduler
	if cfg.Scheduler.Enabled {
		cronDay, cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.CronSchedule)
		if err != nil {
			log.Fatal("Invalid generation cron schedule", zap.Error(err))
		}
		cronConfig := scheduler.GenerationCronSchedulerConfig{
			Enabled:      true,
			CronDay:      cronDay,
			CronHour:     cronHour,
			CronMinute:   cronMinute,
			CronSchedule: cfg.Scheduler.CronSchedule,
			JobTimeout:   cfg.Scheduler.JobTimeout,
		}
		cron = scheduler.NewGenerationCronScheduler(cronConfig, generationService, jobRepo, log)
		if err := cron.Start(context.Background()); err != nil {
			log.Fatal("Failed to start generation scheduler", zap.Error(err))
		}
		defer func() {
			if err := cron.Stop(context.Background()); err != nil {
				log.Error("Error stopping generation scheduler", zap.Error(err))
			}
		}()
		log.Info("Generation scheduler started",
			zap.String("schedule", cfg.Scheduler.CronSchedule),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// HTTP handlers
	rateHandler := handler.NewRateHandler(rateService)
	obligationHandler := handler.NewObligationHandler(obligationService, generationService, cron)
	proofHandler := handler.NewProofHandler(proofService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
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
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))
	r.Register(router.NewBillingRoutes(rateHandler, obligationHandler, proofHandler))
	r.Register(router.NewSystemRoutes(systemHandler))
	r.Setup()

	// Simple ping for liveness probes
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports service and database health.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
