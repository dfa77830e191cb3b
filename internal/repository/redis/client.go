package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "bot:decision:"

// NewClient connects to REDIS_URL, which may be a bare host:port or a
// redis:// URL. It pings once so a bad address fails at startup.
func NewClient(ctx context.Context, url, password string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := options(url, password)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", opts.Addr, err)
	}

	if logger != nil {
		logger.Info("Redis connected", zap.String("addr", opts.Addr))
	}
	return client, nil
}

func options(url, password string) (*redis.Options, error) {
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		if password != "" {
			opts.Password = password
		}
		return opts, nil
	}
	return &redis.Options{Addr: url, Password: password, DB: 0}, nil
}

// DecisionCache stores the column a deterministic profile chose for a position.
type DecisionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDecisionCache(client *redis.Client, ttl time.Duration) *DecisionCache {
	return &DecisionCache{client: client, ttl: ttl}
}

// Get returns ok=false on a miss.
func (c *DecisionCache) Get(ctx context.Context, key string) (int, bool, error) {
	column, err := c.client.Get(ctx, keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return column, true, nil
}

func (c *DecisionCache) Set(ctx context.Context, key string, column int) error {
	return c.client.Set(ctx, keyPrefix+key, column, c.ttl).Err()
}

func (c *DecisionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
