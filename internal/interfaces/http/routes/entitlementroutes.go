package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
)

// EntitlementRouteConfig holds dependencies for quota routes.
type EntitlementRouteConfig struct {
	EntitlementHandler *handlers.EntitlementHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// SetupEntitlementRoutes configures plan limit checks and storage usage
// reporting.
func SetupEntitlementRoutes(engine *gin.Engine, cfg *EntitlementRouteConfig) {
	entitlements := engine.Group("/entitlements")
	entitlements.Use(cfg.AuthMiddleware.RequireAuth())
	{
		entitlements.GET("", cfg.EntitlementHandler.GetLimits)
		entitlements.GET("/storage/check", cfg.EntitlementHandler.CheckStorage)
		entitlements.GET("/members/check", cfg.EntitlementHandler.CheckMembers)
	}

	engine.PUT("/storage-usage", cfg.AuthMiddleware.RequireAuth(), cfg.EntitlementHandler.SetStorageUsage)
}
