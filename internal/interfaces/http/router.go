package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
	"github.com/pecal-inc/pecal/internal/interfaces/http/routes"
)

const defaultMetricsPath = "/metrics"

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.CustomLogger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(c.metrics.GinMiddleware())

	c.engine.GET("/healthz", c.hdlrs.healthHandler.Healthz)

	if c.cfg.Metrics.Enabled {
		path := c.cfg.Metrics.Path
		if path == "" {
			path = defaultMetricsPath
		}
		c.engine.GET(path, gin.WrapH(c.metrics.Handler()))
	}

	routes.SetupBillingRoutes(c.engine, &routes.BillingRouteConfig{
		BillingHandler:      c.hdlrs.billingHandler,
		AuthMiddleware:      c.authMiddleware,
		RegisterRateLimiter: c.registerRateLimiter,
	})

	routes.SetupSubscriptionRoutes(c.engine, &routes.SubscriptionRouteConfig{
		SubscriptionHandler:  c.hdlrs.subscriptionHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})

	routes.SetupPlanRoutes(c.engine, &routes.PlanRouteConfig{
		PlanHandler:          c.hdlrs.planHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})

	routes.SetupEntitlementRoutes(c.engine, &routes.EntitlementRouteConfig{
		EntitlementHandler: c.hdlrs.entitlementHandler,
		AuthMiddleware:     c.authMiddleware,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}
