package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devisflow/internal/config"
	"devisflow/internal/handler"
	"devisflow/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log *zap.Logger,
	extractionH *handler.ExtractionHandler,
	sessionH *handler.SessionHandler,
	logH *handler.LogHandler,
	prefH *handler.PreferenceHandler,
	providerH *handler.ProviderHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity(cfg.Auth.JWTSecret, cfg.Auth.Issuer))

	v1.GET("/providers", providerH.List)

	// Pipeline
	v1.POST("/extract", extractionH.Extract)
	v1.POST("/analyze", extractionH.Analyze)

	// Session state of the caller
	session := v1.Group("/session")
	session.GET("/timeline", sessionH.Timeline)
	session.GET("/events", sessionH.Events)
	session.POST("/retry", sessionH.Retry)
	session.POST("/cancel", sessionH.Cancel)

	// Processing log
	logs := v1.Group("/logs")
	logs.GET("", logH.List)
	logs.GET("/export", logH.Export)
	logs.DELETE("", logH.Clear)

	prefs := v1.Group("/preferences")
	prefs.GET("", prefH.Get)
	prefs.PUT("", prefH.Put)

	return r
}
