package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
)

// BillingRouteConfig holds dependencies for billing routes.
type BillingRouteConfig struct {
	BillingHandler      *handlers.BillingHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RegisterRateLimiter *middleware.RateLimiter
}

// SetupBillingRoutes configures checkout and billing key routes.
func SetupBillingRoutes(engine *gin.Engine, cfg *BillingRouteConfig) {
	billing := engine.Group("/billing")
	billing.Use(cfg.AuthMiddleware.RequireAuth())
	{
		billing.POST("/register", cfg.RegisterRateLimiter.Limit(), cfg.BillingHandler.Register)
		// Kept for clients that read the registered card from the checkout URL.
		billing.GET("/register", cfg.BillingHandler.GetBillingKey)
		billing.GET("/key", cfg.BillingHandler.GetBillingKey)
		billing.DELETE("/remove", cfg.BillingHandler.RemoveBillingKey)
	}
}
