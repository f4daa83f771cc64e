package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is the subset of the Redis client used for fixed windows.
type RedisCounter interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RateLimitRepository counts hits per key in fixed windows.
type RateLimitRepository struct {
	client RedisCounter
}

// NewRateLimitRepository constructs a rate limit repository.
func NewRateLimitRepository(client RedisCounter) *RateLimitRepository {
	return &RateLimitRepository{client: client}
}

// Hit records one attempt and returns the number of attempts in the
// current window. INCR and EXPIRE NX run in one MULTI block, so the window
// starts with the first attempt and a key can never be left without a TTL.
func (r *RateLimitRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
