package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/bus-fleet-api/pkg/config"
)

// ErrDisabled is returned when no Redis host is configured.
var ErrDisabled = errors.New("redis disabled")

// NewRedis connects to Redis. An empty REDIS_HOST disables it.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrDisabled
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial+2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Host, err)
	}
	return client, nil
}
