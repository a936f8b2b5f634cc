package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"moderation-api/internal/api"
	"moderation-api/internal/api/handlers"
	"moderation-api/internal/config"
	"moderation-api/internal/database"
	"moderation-api/internal/inference"
	"moderation-api/internal/media"
	"moderation-api/internal/middleware"
	"moderation-api/internal/repository"
	"moderation-api/internal/services"
	"moderation-api/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := config.Load()

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Get underlying *sql.DB instance for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get underlying *sql.DB instance:", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	tierConfig := config.NewTierConfig()
	cacheConfig := config.NewCacheConfig()

	// Redis is optional, the API degrades to uncached reads without it.
	var cacheService services.CacheService
	if redisCache, err := services.NewRedisCacheService(cacheConfig); err != nil {
		log.Printf("Warning: Redis unavailable, running without cache: %v", err)
	} else {
		cacheService = redisCache
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	requestLogRepo := repository.NewRequestLogRepository(db)
	adminTokenRepo := repository.NewAdminTokenRepository(db)

	// Initialize services
	if cfg.AdminJWTSecret == "" {
		log.Fatal("ADMIN_JWT_SECRET environment variable is required")
	}

	adminTokenService := services.NewAdminTokenService(adminTokenRepo)
	if _, err := adminTokenService.GetOrCreateAdminToken(); err != nil {
		log.Fatal("Failed to provision ops token:", err)
	}

	modelClient := inference.NewClient(cfg.ModelServerURL, 30*time.Second)

	var mediaStore storage.MediaStore
	if cfg.MediaBucket != "" {
		mediaStore, err = storage.NewS3Store(cfg.MediaBucket, cfg.AWSRegion)
		if err != nil {
			log.Printf("Warning: S3 unavailable, submissions keep no media reference: %v", err)
		}
	}

	apiKeyService := services.NewAPIKeyService(apiKeyRepo, userRepo, tierConfig)
	usageService := services.NewAPIUsageService(apiKeyRepo, billingRepo, tierConfig)
	adminAuthService := services.NewAdminAuthService(cfg.AdminJWTSecret, adminTokenService)
	auditLogService := services.NewAuditLogService(auditLogRepo)
	requestLogService := services.NewRequestLogService(requestLogRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	classificationService := services.NewClassificationService(modelClient, modelClient, modelClient, modelClient)
	submissionService := services.NewSubmissionService(submissionRepo, reviewRepo, auditLogService, cacheService, cacheConfig.DefaultTTL)
	webhookService := services.NewWebhookService()
	statsService := services.NewStatsService(submissionRepo)

	fetcher := media.NewFetcher()
	sampler := media.NewVideoSampler()

	// Initialize handlers
	routeHandlers := api.Handlers{
		Classify:      handlers.NewClassifyHandler(classificationService, submissionService, webhookService, fetcher, sampler, mediaStore),
		Submissions:   handlers.NewSubmissionHandler(submissionService),
		Reviews:       handlers.NewReviewHandler(submissionService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Usage:         handlers.NewUsageHandler(usageService),
		Credentials:   handlers.NewCredentialHandler(apiKeyService),
		Stats:         handlers.NewStatsHandler(statsService),
		AuditLogs:     handlers.NewAuditLogHandler(auditLogService),
		RequestLogs:   handlers.NewRequestLogHandler(requestLogService),
	}

	requestLogger := middleware.NewRequestLogger(requestLogService)

	router := api.SetupRoutes(routeHandlers, db, cfg.ModelServerURL, usageService, adminAuthService, requestLogger)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
			"X-API-Key",
			"X-Admin-Token",
		},
		ExposedHeaders: []string{
			"Link",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	// Create server with timeouts. Video fetches and frame sampling can
	// run long, so the write timeout is generous.
	srv := &http.Server{
		Handler:      corsMiddleware.Handler(router),
		Addr:         ":" + cfg.Port,
		WriteTimeout: 120 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	// Start server
	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(srv.ListenAndServe())
}
