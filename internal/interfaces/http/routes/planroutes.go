package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/infrastructure/permission"
	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
)

// PlanRouteConfig holds dependencies for plan routes.
type PlanRouteConfig struct {
	PlanHandler          *handlers.PlanHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupPlanRoutes configures plan routes.
func SetupPlanRoutes(engine *gin.Engine, cfg *PlanRouteConfig) {
	// Public endpoints (no authentication required)
	plans := engine.Group("/plans")
	{
		plans.GET("", cfg.PlanHandler.List)
		plans.GET("/:id", cfg.PlanHandler.Get)
	}

	// Admin-only endpoints (write operations)
	plansAdmin := engine.Group("/admin/plans")
	plansAdmin.Use(cfg.AuthMiddleware.RequireAuth())
	plansAdmin.Use(cfg.PermissionMiddleware.RequirePermission(permission.ResourcePlans, permission.ActionWrite))
	{
		plansAdmin.POST("", cfg.PlanHandler.Create)
		plansAdmin.PUT("/:id", cfg.PlanHandler.Update)
		plansAdmin.DELETE("/:id", cfg.PlanHandler.Delete)
	}
}
