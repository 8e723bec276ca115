package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

var _ Limiter = (*Redis)(nil)

const redisKeyPrefix = "ratelimit"

// Redis is a fixed-window counter shared by every API instance using the
// same Redis.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(key string, rule Rule) string {
	return fmt.Sprintf("%s:%s:%d", redisKeyPrefix, key, int64(rule.Window.Seconds()))
}

func (r *Redis) Allow(ctx context.Context, key string, rule Rule) (bool, error) {
	if !rule.valid() {
		return true, nil
	}

	k := redisKey(key, rule)

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}

	// the first hit opens the window
	if count == 1 {
		err = r.client.Expire(ctx, k, rule.Window).Err()
		if err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}

	return count <= int64(rule.Limit), nil
}
