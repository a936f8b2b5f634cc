package api

import (
	"moderation-api/internal/api/controllers"
	"moderation-api/internal/api/handlers"
	"moderation-api/internal/metrics"
	"moderation-api/internal/middleware"
	"moderation-api/internal/services"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Classify      *handlers.ClassifyHandler
	Submissions   *handlers.SubmissionHandler
	Reviews       *handlers.ReviewHandler
	Notifications *handlers.NotificationHandler
	Usage         *handlers.UsageHandler
	Credentials   *handlers.CredentialHandler
	Stats         *handlers.StatsHandler
	AuditLogs     *handlers.AuditLogHandler
	RequestLogs   *handlers.RequestLogHandler
}

func SetupRoutes(
	h Handlers,
	db *gorm.DB,
	modelServerURL string,
	usageService services.APIUsageService,
	adminAuthService services.AdminAuthService,
	requestLogger *middleware.RequestLogger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	// Public routes
	router.HandleFunc("/health", controllers.HealthCheckHandler(db, modelServerURL)).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Admin routes, registered before the caller subrouter so the
	// /api/v1/admin prefix never falls through to key auth.
	adminRouter := router.PathPrefix("/api/v1/admin").Subrouter()
	adminRouter.Use(middleware.AdminMiddleware(adminAuthService))

	adminRouter.HandleFunc("/submissions", h.Reviews.ListQueue).Methods("GET")
	adminRouter.HandleFunc("/submissions/{id}/review", h.Reviews.ReviewSubmission).Methods("POST")
	adminRouter.HandleFunc("/api-keys", h.Credentials.IssueKey).Methods("POST")
	adminRouter.HandleFunc("/api-keys", h.Credentials.ListKeys).Methods("GET")
	adminRouter.HandleFunc("/api-keys/{id}", h.Credentials.UpdateKey).Methods("PATCH")
	adminRouter.HandleFunc("/stats", h.Stats.GetModerationStats).Methods("GET")
	adminRouter.HandleFunc("/audit-logs", h.AuditLogs.ListAuditLogs).Methods("GET")
	adminRouter.HandleFunc("/request-logs", h.RequestLogs.ListRequestLogs).Methods("GET")

	// Caller routes (protected by API key)
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.APIKeyMiddleware(usageService))
	apiRouter.Use(requestLogger.LogRequest)

	apiRouter.HandleFunc("/moderate/text", h.Classify.ModerateText).Methods("POST")
	apiRouter.HandleFunc("/moderate/image", h.Classify.ModerateImage).Methods("POST")
	apiRouter.HandleFunc("/moderate/video", h.Classify.ModerateVideo).Methods("POST")
	apiRouter.HandleFunc("/submissions", h.Submissions.ListSubmissions).Methods("GET")
	apiRouter.HandleFunc("/submissions/{id}", h.Submissions.GetSubmission).Methods("GET")
	apiRouter.HandleFunc("/usage", h.Usage.GetCurrentUsage).Methods("GET")
	apiRouter.HandleFunc("/notifications", h.Notifications.ListNotifications).Methods("GET")
	apiRouter.HandleFunc("/notifications/read-all", h.Notifications.MarkAllNotificationsRead).Methods("POST")
	apiRouter.HandleFunc("/notifications/{id}/read", h.Notifications.MarkNotificationRead).Methods("POST")

	return router
}
