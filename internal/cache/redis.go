package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matchmaker/internal/config"
)

// PendingTTL bounds how stale a cached pending-likers count may get.
const PendingTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForPendingCount generates the Redis key for a user's pending-likers count.
func KeyForPendingCount(userID uint64) string {
	return fmt.Sprintf("pending:count:%d", userID)
}

// GetPendingCount returns the cached count. ok is false on a miss.
// A hit refreshes the TTL since the user is active.
func (c *RedisCache) GetPendingCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := KeyForPendingCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as a miss and let the caller overwrite it
		return 0, false, nil
	}
	_ = c.Client.Expire(ctx, key, PendingTTL).Err()
	return n, true, nil
}

// SetPendingCount stores count with a fresh TTL.
func (c *RedisCache) SetPendingCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, KeyForPendingCount(userID), count, PendingTTL).Err()
}

// InvalidatePending drops the cached counts of every given user.
func (c *RedisCache) InvalidatePending(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, KeyForPendingCount(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}
