package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/internal/service"
	"github.com/noah-isme/blog-platform-api/pkg/cache"
	"github.com/noah-isme/blog-platform-api/pkg/config"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

// HitCounter counts requests inside a fixed window.
type HitCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit rejects requests beyond cfg.Limit per client IP and route within
// cfg.Window. Counter failures let the request through.
func RateLimit(counter HitCounter, cfg config.RateLimitConfig, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !cfg.Enabled || counter == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := cache.Key("ratelimit", c.ClientIP(), path)

		count, err := counter.Hit(c.Request.Context(), key, cfg.Window)
		if err != nil {
			logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count > int64(cfg.Limit) {
			metrics.RecordRateLimited(path)
			response.Abort(c, appErrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
