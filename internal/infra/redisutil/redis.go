package redisutil

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/fastprodman/anoncasino/internal/config"
)

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return rdb, nil
}
