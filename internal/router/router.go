package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mealdiary/backend/internal/api"
	"github.com/mealdiary/backend/internal/middleware"
	"github.com/mealdiary/backend/internal/service"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	profileHandler *api.ProfileHandler,
	mealHandler *api.MealHandler,
	photoHandler *api.PhotoHandler,
	recommendationHandler *api.RecommendationHandler,
	authService service.IAuthService,
	recommendationLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(middleware.CORS())

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Auth routes
	authHandler.RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		profileHandler.RegisterRoutes(protected)
		mealHandler.RegisterRoutes(protected)
		photoHandler.RegisterRoutes(protected)

		if recommendationLimiter != nil {
			recommendationHandler.RegisterRoutes(protected, recommendationLimiter.RateLimitMiddleware())
		} else {
			recommendationHandler.RegisterRoutes(protected)
		}
	}

	return router
}
