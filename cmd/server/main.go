package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	alertapp "github.com/opas/backend/internal/application/alert"
	auditapp "github.com/opas/backend/internal/application/audit"
	dashboardapp "github.com/opas/backend/internal/application/dashboard"
	identityapp "github.com/opas/backend/internal/application/identity"
	maintenanceapp "github.com/opas/backend/internal/application/maintenance"
	opasapp "github.com/opas/backend/internal/application/opas"
	pricingapp "github.com/opas/backend/internal/application/pricing"
	sellerapp "github.com/opas/backend/internal/application/seller"
	"github.com/opas/backend/internal/infrastructure/auth"
	"github.com/opas/backend/internal/infrastructure/cache"
	"github.com/opas/backend/internal/infrastructure/config"
	"github.com/opas/backend/internal/infrastructure/event"
	csvimport "github.com/opas/backend/internal/infrastructure/import"
	"github.com/opas/backend/internal/infrastructure/logger"
	"github.com/opas/backend/internal/infrastructure/persistence"
	"github.com/opas/backend/internal/infrastructure/scheduler"
	"github.com/opas/backend/internal/infrastructure/storage"
	"github.com/opas/backend/internal/interfaces/http/handler"
	"github.com/opas/backend/internal/interfaces/http/middleware"
	"github.com/opas/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/opas/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			OPAS Backend API
//	@version		1.0
//	@description	Online Produce Administration System - marketplace administration backend

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

	log.Info("Starting OPAS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	adminUserRepo := persistence.NewGormAdminUserRepository(db.DB)
	registrationRepo := persistence.NewGormRegistrationRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	ceilingRepo := persistence.NewGormCeilingRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	nonComplianceRepo := persistence.NewGormNonComplianceRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Transaction scopes for multi-aggregate writes
	sellerTxScope := persistence.NewGormSellerTransactionScope(db.DB)
	purchaseTxScope := persistence.NewGormPurchaseTransactionScope(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Token blacklist backs logout and credential invalidation. Redis keeps
	// revocations across restarts; fall back to in-memory when unavailable.
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis token blacklist unavailable, using in-memory blacklist", zap.Error(err))
			blacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			blacklist = redisBlacklist
		}
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Object storage for seller verification documents
	var documentStorage sellerapp.DocumentStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		documentStorage = s3Storage
	} else {
		log.Warn("Object storage not configured, document URLs will not be generated")
		documentStorage = storage.NewStubObjectStorage()
	}

	// Dashboard snapshot cache
	var dashboardCache dashboardapp.SnapshotCache
	if cfg.Redis.Host != "" {
		redisCache, err := cache.NewRedisDashboardCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis dashboard cache unavailable, using in-memory cache", zap.Error(err))
			dashboardCache = cache.NewInMemoryDashboardCache(cfg.Cache.DashboardTTL)
		} else {
			dashboardCache = redisCache
		}
	} else {
		dashboardCache = cache.NewInMemoryDashboardCache(cfg.Cache.DashboardTTL)
	}

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(adminUserRepo, jwtService, blacklist, log)
	userService := identityapp.NewAdminUserService(adminUserRepo, log)

	// Seller services
	registrationService := sellerapp.NewRegistrationService(registrationRepo, profileRepo, sellerTxScope, documentStorage, eventBus, log)
	if cfg.Storage.PresignExpiry > 0 {
		registrationConfig := sellerapp.DefaultRegistrationServiceConfig()
		registrationConfig.UploadURLExpiry = cfg.Storage.PresignExpiry
		registrationConfig.DownloadURLExpiry = cfg.Storage.PresignExpiry
		registrationService.SetConfig(registrationConfig)
	}
	profileService := sellerapp.NewProfileService(profileRepo, eventBus, log)

	// Pricing services
	ceilingService := pricingapp.NewCeilingService(ceilingRepo, log)
	complianceService := pricingapp.NewComplianceService(ceilingRepo, listingRepo, nonComplianceRepo, eventBus, log)
	listingService := pricingapp.NewListingService(listingRepo, complianceService, log)

	importSessions := csvimport.NewInMemorySessionStore(24 * time.Hour)
	defer importSessions.Stop()
	ceilingImportService := pricingapp.NewCeilingImportService(ceilingRepo, importSessions, log)

	// Procurement and inventory services
	purchaseService := opasapp.NewPurchaseService(purchaseRepo, inventoryRepo, purchaseTxScope, eventBus, log)
	inventoryService := opasapp.NewInventoryService(inventoryRepo, eventBus, log)

	// Alert and audit services
	alertService := alertapp.NewService(alertRepo, log)
	auditService := auditapp.NewService(auditRepo, log)

	// Dashboard service with snapshot cache
	dashboardService := dashboardapp.NewService(
		registrationRepo, profileRepo, nonComplianceRepo, alertRepo,
		purchaseRepo, inventoryRepo, complianceService, dashboardCache, log,
	)
	if cfg.Cache.DashboardTTL > 0 {
		dashboardService.SetConfig(dashboardapp.ServiceConfig{CacheTTL: cfg.Cache.DashboardTTL})
	}

	// Register event handlers: domain events raise operator alerts
	nonComplianceHandler := alertapp.NewNonComplianceRecordedHandler(alertService, log)
	eventBus.Subscribe(nonComplianceHandler)

	lowStockHandler := alertapp.NewLowStockDetectedHandler(alertService, log)
	eventBus.Subscribe(lowStockHandler)

	registrationSubmittedHandler := alertapp.NewRegistrationSubmittedHandler(alertService, log)
	eventBus.Subscribe(registrationSubmittedHandler)

	log.Info("Event handlers registered",
		zap.Strings("non_compliance_events", nonComplianceHandler.EventTypes()),
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
		zap.Strings("registration_submitted_events", registrationSubmittedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize background job scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		jobExecutor := maintenanceapp.NewJobExecutor(complianceService, dashboardService, inventoryService, log)
		jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, jobExecutor, log)
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()

		triggerConfig := scheduler.DefaultCronTriggerConfig()
		if cfg.Scheduler.ComplianceScanInterval > 0 {
			triggerConfig.ScanInterval = cfg.Scheduler.ComplianceScanInterval
		}
		if hour, minute, ok := parseDailySchedule(cfg.Scheduler.SnapshotRefreshSchedule); ok {
			triggerConfig.SnapshotHour = hour
			triggerConfig.SnapshotMinute = minute
		}
		cronTrigger := scheduler.NewCronTrigger(triggerConfig, jobScheduler, log)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("compliance_scan_interval", triggerConfig.ScanInterval),
			zap.Int("snapshot_hour", triggerConfig.SnapshotHour),
			zap.Int("snapshot_minute", triggerConfig.SnapshotMinute),
		)
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewAdminUserHandler(userService, auditService)
	registrationHandler := handler.NewSellerRegistrationHandler(registrationService, auditService)
	profileHandler := handler.NewSellerProfileHandler(profileService, auditService)
	ceilingHandler := handler.NewCeilingHandler(ceilingService, auditService)
	ceilingImportHandler := handler.NewCeilingImportHandler(ceilingImportService, auditService)
	listingHandler := handler.NewListingHandler(listingService)
	complianceHandler := handler.NewComplianceHandler(complianceService, auditService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, auditService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, auditService)
	alertHandler := handler.NewAlertHandler(alertService)
	auditLogHandler := handler.NewAuditLogHandler(auditService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	systemHandler := handler.NewSystemHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Swagger API documentation
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Authentication routes. Login and refresh are public but carry a
	// stricter rate limit to slow down credential stuffing.
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.POST("/login", middleware.AuthRateLimit(authLimiter), authHandler.Login)
		authRoutes.POST("/refresh", middleware.AuthRateLimit(authLimiter), authHandler.RefreshToken)
	} else {
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.RefreshToken)
	}
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Administrator account management
	adminUserRoutes := router.NewDomainGroup("admin-users", "/admin-users")
	adminUserRoutes.POST("", userHandler.Create)
	adminUserRoutes.GET("", userHandler.List)
	adminUserRoutes.GET("/:id", userHandler.Get)
	adminUserRoutes.PUT("/:id", userHandler.Update)
	adminUserRoutes.DELETE("/:id", userHandler.Delete)
	adminUserRoutes.POST("/:id/activate", userHandler.Activate)
	adminUserRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	adminUserRoutes.POST("/:id/lock", userHandler.Lock)
	adminUserRoutes.POST("/:id/unlock", userHandler.Unlock)
	adminUserRoutes.POST("/:id/reset-password", userHandler.ResetPassword)

	// Seller registration review workflow
	registrationRoutes := router.NewDomainGroup("seller-registrations", "/seller-registrations")
	registrationRoutes.POST("", registrationHandler.Submit)
	registrationRoutes.GET("", registrationHandler.List)
	registrationRoutes.GET("/:id", registrationHandler.Get)
	registrationRoutes.POST("/:id/review", registrationHandler.StartReview)
	registrationRoutes.POST("/:id/approve", registrationHandler.Approve)
	registrationRoutes.POST("/:id/reject", registrationHandler.Reject)
	registrationRoutes.POST("/:id/documents", registrationHandler.InitiateDocumentUpload)
	registrationRoutes.POST("/:id/documents/confirm", registrationHandler.ConfirmDocumentUpload)
	registrationRoutes.GET("/:id/documents", registrationHandler.ListDocuments)

	// Seller profile management
	sellerRoutes := router.NewDomainGroup("sellers", "/sellers")
	sellerRoutes.GET("", profileHandler.List)
	sellerRoutes.GET("/:id", profileHandler.Get)
	sellerRoutes.GET("/code/:code", profileHandler.GetByCode)
	sellerRoutes.POST("/:id/suspend", profileHandler.Suspend)
	sellerRoutes.POST("/:id/reinstate", profileHandler.Reinstate)
	sellerRoutes.POST("/:id/ban", profileHandler.Ban)
	sellerRoutes.POST("/:id/rate", profileHandler.Rate)
	sellerRoutes.POST("/:id/fulfillment", profileHandler.RecordFulfillment)

	// Price ceiling management
	ceilingRoutes := router.NewDomainGroup("price-ceilings", "/price-ceilings")
	ceilingRoutes.POST("", ceilingHandler.Create)
	ceilingRoutes.GET("", ceilingHandler.List)
	ceilingRoutes.GET("/:id", ceilingHandler.Get)
	ceilingRoutes.PUT("/:id", ceilingHandler.Update)
	ceilingRoutes.POST("/:id/deactivate", ceilingHandler.Deactivate)
	ceilingRoutes.POST("/:id/reactivate", ceilingHandler.Reactivate)
	ceilingRoutes.GET("/product/:code", ceilingHandler.GetActiveForProduct)
	ceilingRoutes.POST("/import", ceilingImportHandler.Import)
	ceilingRoutes.GET("/import/sessions", ceilingImportHandler.ListSessions)
	ceilingRoutes.GET("/import/sessions/:id", ceilingImportHandler.GetSession)

	// Seller listings (price declarations)
	listingRoutes := router.NewDomainGroup("listings", "/listings")
	listingRoutes.PUT("", listingHandler.Upsert)
	listingRoutes.GET("", listingHandler.List)
	listingRoutes.GET("/:id", listingHandler.Get)
	listingRoutes.POST("/:id/deactivate", listingHandler.Deactivate)

	// Compliance scanning and non-compliance records
	complianceRoutes := router.NewDomainGroup("compliance", "/compliance")
	complianceRoutes.POST("/scan", complianceHandler.Scan)
	complianceRoutes.GET("/records", complianceHandler.List)
	complianceRoutes.GET("/records/:id", complianceHandler.Get)
	complianceRoutes.POST("/records/:id/resolve", complianceHandler.Resolve)
	complianceRoutes.POST("/records/:id/waive", complianceHandler.Waive)
	complianceRoutes.GET("/rate", complianceHandler.Rate)

	// Purchase records
	purchaseRoutes := router.NewDomainGroup("purchases", "/purchases")
	purchaseRoutes.POST("", purchaseHandler.Create)
	purchaseRoutes.GET("", purchaseHandler.List)
	purchaseRoutes.GET("/number/:number", purchaseHandler.GetByNumber)
	purchaseRoutes.GET("/:id", purchaseHandler.Get)
	purchaseRoutes.DELETE("/:id", purchaseHandler.Delete)
	purchaseRoutes.POST("/:id/items", purchaseHandler.AddItem)
	purchaseRoutes.PUT("/:id/items/:itemId", purchaseHandler.UpdateItem)
	purchaseRoutes.DELETE("/:id/items/:itemId", purchaseHandler.RemoveItem)
	purchaseRoutes.POST("/:id/confirm", purchaseHandler.Confirm)
	purchaseRoutes.POST("/:id/receive", purchaseHandler.Receive)
	purchaseRoutes.POST("/:id/pay", purchaseHandler.MarkPaid)
	purchaseRoutes.POST("/:id/cancel", purchaseHandler.Cancel)

	// Inventory tracking
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("", inventoryHandler.List)
	inventoryRoutes.GET("/low-stock", inventoryHandler.ListLowStock)
	inventoryRoutes.POST("/sweep", inventoryHandler.Sweep)
	inventoryRoutes.GET("/product/:code", inventoryHandler.GetByProductCode)
	inventoryRoutes.GET("/:id", inventoryHandler.Get)
	inventoryRoutes.POST("/:id/adjust", inventoryHandler.Adjust)
	inventoryRoutes.POST("/:id/release", inventoryHandler.Release)
	inventoryRoutes.PUT("/:id/thresholds", inventoryHandler.SetThresholds)

	// Operator alerts
	alertRoutes := router.NewDomainGroup("alerts", "/alerts")
	alertRoutes.POST("", alertHandler.Create)
	alertRoutes.GET("", alertHandler.List)
	alertRoutes.GET("/active/count", alertHandler.CountActive)
	alertRoutes.GET("/:id", alertHandler.Get)
	alertRoutes.POST("/:id/acknowledge", alertHandler.Acknowledge)
	alertRoutes.POST("/:id/resolve", alertHandler.Resolve)

	// Audit log (read-only)
	auditRoutes := router.NewDomainGroup("audit-log", "/audit-log")
	auditRoutes.GET("", auditLogHandler.List)
	auditRoutes.GET("/count", auditLogHandler.Count)
	auditRoutes.GET("/:id", auditLogHandler.Get)

	// Dashboard
	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("/stats", dashboardHandler.Stats)
	dashboardRoutes.GET("/health", dashboardHandler.Health)
	dashboardRoutes.POST("/refresh", dashboardHandler.Refresh)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(adminUserRoutes).
		Register(registrationRoutes).
		Register(sellerRoutes).
		Register(ceilingRoutes).
		Register(listingRoutes).
		Register(complianceRoutes).
		Register(purchaseRoutes).
		Register(inventoryRoutes).
		Register(alertRoutes).
		Register(auditRoutes).
		Register(dashboardRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

// parseDailySchedule extracts hour and minute from a cron-style
// "minute hour * * *" schedule string.
func parseDailySchedule(schedule string) (hour, minute int, ok bool) {
	if _, err := fmt.Sscanf(schedule, "%d %d", &minute, &hour); err != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
