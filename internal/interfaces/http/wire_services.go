package http

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/application/common"
	"github.com/pecal-inc/pecal/internal/infrastructure/auth"
	"github.com/pecal-inc/pecal/internal/infrastructure/cache"
	"github.com/pecal-inc/pecal/internal/infrastructure/config"
	"github.com/pecal-inc/pecal/internal/infrastructure/database"
	"github.com/pecal-inc/pecal/internal/infrastructure/email"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	"github.com/pecal-inc/pecal/internal/infrastructure/nicepay"
	"github.com/pecal-inc/pecal/internal/infrastructure/permission"
	"github.com/pecal-inc/pecal/internal/infrastructure/ratelimit"
	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers"
	"github.com/pecal-inc/pecal/internal/shared/db"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// infraServices holds the infrastructure services shared by use cases
// and middlewares.
type infraServices struct {
	gateway    gateway.BillingGateway
	chargeLock *cache.ChargeLock
	limiter    *ratelimit.RedisRateLimiter
	alerter    *cache.AlertDeduplicator
	enforcer   *permission.Enforcer
	jwtSvc     *auth.JWTService
	ownerGuard *common.OwnerGuard
	txMgr      *db.TransactionManager
	metrics    *metrics.Metrics
}

// initInfrastructure creates repositories, metrics and the infrastructure
// services, and makes sure the default access policies exist.
func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	c.metrics = newMetrics(cfg)
	c.repos = newRepositories(c.db, log)

	enforcer, err := permission.NewEnforcer(c.db, log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.EnsureDefaultPolicies(); err != nil {
		return fmt.Errorf("failed to load default policies: %w", err)
	}

	c.svcs = &infraServices{
		gateway:    nicepay.NewClient(cfg.NicePay, nil, c.metrics, log),
		chargeLock: cache.NewChargeLock(c.redis, cfg.Billing.LockTTL),
		limiter:    ratelimit.NewRedisRateLimiter(c.redis),
		alerter: cache.NewAlertDeduplicator(
			c.redis,
			email.NewAlertSender(cfg.Email, cfg.Billing.AlertEmail, log),
			cfg.Billing.AlertCooldown,
			log,
		),
		enforcer:   enforcer,
		jwtSvc:     auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes),
		ownerGuard: common.NewOwnerGuard(c.repos.teamMembership),
		txMgr:      db.NewTransactionManager(c.db),
		metrics:    c.metrics,
	}

	return nil
}

// newMetrics registers the billing metrics plus the Go runtime collectors
// when /metrics is exposed.
func newMetrics(cfg *config.Config) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewMetrics(registry)
}

// healthChecks lists the dependencies /healthz probes.
func (c *Container) healthChecks() []handlers.HealthCheck {
	return []handlers.HealthCheck{
		{
			Name: "database",
			Check: func(ctx context.Context) error {
				return database.Ping(ctx, c.db)
			},
		},
		{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return c.redis.Ping(ctx).Err()
			},
		},
	}
}

// NewRedisClient creates and tests the Redis client connection.
func NewRedisClient(ctx context.Context, cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	return redisClient, nil
}
