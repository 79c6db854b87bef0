package http

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manmaru/backend/config"
)

// maxBodyBytes caps request bodies on the API routes
const maxBodyBytes = 1 << 20

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware; recovery first so it sees panics from everything else
	router.Use(RecoveryMiddleware(logger))
	router.Use(requestid.New())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(
		RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst, logger),
		BodySizeLimit(maxBodyBytes),
		TimeoutMiddleware(cfg.Server.RequestTimeout),
	)
	{
		nutrition := v1.Group("/nutrition")
		{
			nutrition.POST("/calculate", handler.CalculateNutrition)
		}

		foods := v1.Group("/foods")
		{
			foods.POST("/match", handler.MatchFoods)
			foods.GET("/search", handler.SearchFoods)
			foods.GET("/:id", handler.GetFood)
		}

		quantity := v1.Group("/quantity")
		{
			quantity.POST("/parse", handler.ParseQuantity)
		}
	}

	return router
}
