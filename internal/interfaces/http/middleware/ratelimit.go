package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/infrastructure/ratelimit"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
	"github.com/pecal-inc/pecal/internal/shared/utils"
)

type AttemptLimiter interface {
	Allow(ctx context.Context, key string, limit ratelimit.Limit) (bool, error)
}

// RateLimiter throttles an endpoint per authenticated member, or per client
// IP for anonymous callers.
type RateLimiter struct {
	limiter AttemptLimiter
	limit   ratelimit.Limit
	scope   string
	logger  logger.Interface
}

func NewRateLimiter(limiter AttemptLimiter, limit ratelimit.Limit, scope string, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		scope:   scope,
		logger:  logger,
	}
}

// Limit must run after RequireAuth to key on the member. Limiter errors let
// the request through.
func (r *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.limit.Enabled() {
			c.Next()
			return
		}

		key := r.key(c)
		allowed, err := r.limiter.Allow(c.Request.Context(), key, r.limit)
		if err != nil {
			r.logger.Warnw("rate limit check failed", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			r.logger.Warnw("rate limit exceeded", "key", key)
			utils.ErrorResponseWithError(c, errors.NewRateLimitError("too many attempts, try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (r *RateLimiter) key(c *gin.Context) string {
	if memberID := MemberID(c); memberID != 0 {
		return fmt.Sprintf("%s:member:%d", r.scope, memberID)
	}
	return fmt.Sprintf("%s:ip:%s", r.scope, c.ClientIP())
}
