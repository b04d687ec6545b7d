package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pecal-inc/pecal/internal/infrastructure/config"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	"github.com/pecal-inc/pecal/internal/infrastructure/ratelimit"
	"github.com/pecal-inc/pecal/internal/infrastructure/scheduler"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and the billing scheduler. It wires everything together and
// provides Shutdown() for graceful termination.
type Container struct {
	// Core infrastructure
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client
	metrics *metrics.Metrics

	// Repositories
	repos *repositories

	// Infrastructure services
	svcs *infraServices

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	registerRateLimiter  *middleware.RateLimiter

	// Background services
	schedulerManager *scheduler.SchedulerManager
}

// NewContainer creates a Container with all dependencies wired together.
// The redis client is owned by the caller.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	// Section 1: Infrastructure - repositories, gateway, lock, policies
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Use cases
	c.ucs = newUseCases(c.repos, c.svcs, cfg, log)

	// Section 3: Handlers and middlewares
	c.hdlrs = newHandlers(c.ucs, c.healthChecks(), log)
	c.authMiddleware = middleware.NewAuthMiddleware(c.svcs.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.svcs.enforcer, log)
	c.registerRateLimiter = middleware.NewRateLimiter(c.svcs.limiter, ratelimit.Limit{
		PerMinute: cfg.Billing.RegisterRateLimit.PerMinute,
		PerHour:   cfg.Billing.RegisterRateLimit.PerHour,
	}, "billing-register", log)

	return c, nil
}

// ChargeJob returns the recurring charge run, for callers that drive it
// without the scheduler.
func (c *Container) ChargeJob() scheduler.BatchJob {
	return c.ucs.processDueSubscriptionsUC
}

// StartScheduler registers the recurring charge job and starts the scheduler.
func (c *Container) StartScheduler() error {
	if c.schedulerManager != nil && c.schedulerManager.IsStarted() {
		return nil
	}

	manager, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	billing := c.cfg.Billing
	if err := manager.RegisterBillingJobs(c.ucs.processDueSubscriptionsUC, billing.ChargeInterval, billing.RunTimeout()); err != nil {
		return fmt.Errorf("failed to register billing jobs: %w", err)
	}

	manager.Start()
	c.schedulerManager = manager

	c.log.Infow("billing scheduler started",
		"charge_interval", billing.ChargeInterval,
		"charge_timeout", billing.RunTimeout(),
	)
	return nil
}

// Shutdown stops background services. Open HTTP requests are drained by
// the server before this is called.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop billing scheduler", "error", err)
		}
	}
}
