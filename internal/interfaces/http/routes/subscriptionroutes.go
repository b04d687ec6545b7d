package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/infrastructure/permission"
	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
)

// SubscriptionRouteConfig holds dependencies for subscription routes.
type SubscriptionRouteConfig struct {
	SubscriptionHandler  *handlers.SubscriptionHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupSubscriptionRoutes configures subscription routes.
func SetupSubscriptionRoutes(engine *gin.Engine, cfg *SubscriptionRouteConfig) {
	subscriptions := engine.Group("/subscriptions")
	subscriptions.Use(cfg.AuthMiddleware.RequireAuth())
	{
		subscriptions.GET("", cfg.SubscriptionHandler.List)
		subscriptions.PUT("", cfg.SubscriptionHandler.UpdateStatus)
	}

	admin := engine.Group("/admin/subscriptions")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	admin.Use(cfg.PermissionMiddleware.RequirePermission(permission.ResourceSubscriptions, permission.ActionDelete))
	{
		admin.DELETE("/:id", cfg.SubscriptionHandler.Delete)
	}
}
