package http

import (
	"github.com/gin-gonic/gin"

	"github.com/realfoodscore/backend/config"
	"github.com/realfoodscore/backend/internal/worker"
)

// NewRateLimiter builds the per-IP limiter for the configured requests per
// minute. It returns nil when rate limiting is disabled.
func NewRateLimiter(cfg config.RateLimitConfig) *worker.Limiter {
	if cfg.PerIP <= 0 {
		return nil
	}
	return worker.NewLimiter(float64(cfg.PerIP)/60, cfg.Burst)
}

// SetupRouter creates and configures the Gin router. A nil limiter leaves
// the scoring routes unlimited.
func SetupRouter(cfg *config.Config, handler *Handler, limiter *worker.Limiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(handler.logger))
	router.Use(LoggerMiddleware(handler.logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/", handler.Index)
	router.GET("/health", handler.HealthCheck)

	limited := router.Group("")
	if limiter != nil {
		limited.Use(RateLimitMiddleware(limiter))
	}

	// Query-string API kept for existing clients
	limited.GET("/score", handler.LegacyScore)

	v1 := limited.Group("/api/v1")
	{
		v1.POST("/score", handler.ScoreIngredients)

		barcode := v1.Group("/barcode")
		{
			barcode.GET("/:code", handler.GetBarcode)
			barcode.GET("/:code/score", handler.ScoreBarcode)
		}

		v1.GET("/products/search", handler.SearchProducts)
	}

	return router
}
