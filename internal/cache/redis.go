package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/spark-match/internal/config"
)

// LikedMeTTL is how long a cached liked-me count lives without being read.
const LikedMeTTL = time.Hour

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

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForLikedMeCount generates Redis key for a user's liked-me count
func (c *RedisCache) KeyForLikedMeCount(userID uint64) string {
	return fmt.Sprintf("likedme:count:%d", userID)
}

// SetLikedMeCount stores the count and (re)starts its TTL.
func (c *RedisCache) SetLikedMeCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikedMeCount(userID), count, LikedMeTTL).Err()
}

// GetLikedMeCount returns the cached count. ok is false on a cache miss.
func (c *RedisCache) GetLikedMeCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := c.KeyForLikedMeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikedMeTTL).Err()
	return n, true, nil
}

// InvalidateLikedMeCount drops the cached counts of the given users.
func (c *RedisCache) InvalidateLikedMeCount(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForLikedMeCount(id))
	}
	return c.Del(ctx, keys...)
}
