package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces translation memory keys in a shared Redis.
const DefaultKeyPrefix = "locpatch:"

// Redis is a Redis-backed translation memory shared across runs.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis translation memory.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379/0")
	TTL       time.Duration // 0 = no expiration
	KeyPrefix string        // Prefix for all keys (default: "locpatch:")
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	c := NewRedisFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisFromClient creates a Redis translation memory from an existing client.
func NewRedisFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get implements TranslationCache. redis.Nil and connection errors both
// read as a miss.
func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set implements TranslationCache.
func (c *Redis) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err()
}

// Ping tests the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Verify Redis implements TranslationCache
var _ TranslationCache = (*Redis)(nil)
