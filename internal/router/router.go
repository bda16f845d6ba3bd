package router

import (
	"github.com/gin-gonic/gin"

	"medscan/internal/handler"
	"medscan/internal/metrics"
	"medscan/internal/middleware"
)

// Deps carries everything the route table needs. Validator and Limiter
// may be nil to disable authentication and rate limiting.
type Deps struct {
	OCR            *handler.OCRHandler
	Reports        *handler.ReportHandler
	Health         *handler.HealthHandler
	Metrics        *metrics.Metrics
	Validator      *middleware.TokenValidator
	Limiter        *middleware.IPRateLimiter
	AllowedOrigins []string
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(d Deps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.CORS(d.AllowedOrigins))

	// Health checks and scraping
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/ocr/health", d.OCR.Health)

	protected := v1.Group("")
	protected.Use(middleware.Auth(d.Validator))
	protected.Use(middleware.RateLimit(d.Limiter))

	protected.POST("/ocr", d.OCR.Analyze)

	reports := protected.Group("/reports")
	reports.GET("", d.Reports.List)
	reports.GET("/stats", d.Reports.Stats)
	reports.GET("/export", d.Reports.Export)
	reports.GET("/:id", d.Reports.Get)
	reports.DELETE("/:id", d.Reports.Delete)

	return r
}
