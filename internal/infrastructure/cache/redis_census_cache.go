package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/redis/go-redis/v9"
)

// RedisCensusCache implements the census cache on Redis
// This is suitable for distributed deployments where multiple instances
// should see the same cached counts
type RedisCensusCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCensusCache creates a new Redis-backed census cache
func NewRedisCensusCache(cfg RedisConfig) (*RedisCensusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCensusCache{
		client:    client,
		keyPrefix: "billing:",
	}, nil
}

// NewRedisCensusCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisCensusCacheWithClient(client *redis.Client, keyPrefix string) *RedisCensusCache {
	if keyPrefix == "" {
		keyPrefix = "billing:"
	}
	return &RedisCensusCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached census for a key. A missing key is a miss, not an
// error.
func (c *RedisCensusCache) Get(ctx context.Context, key string) (directory.CensusResult, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return directory.CensusResult{}, false, nil
		}
		return directory.CensusResult{}, false, fmt.Errorf("failed to read census cache: %w", err)
	}

	var result directory.CensusResult
	if err := json.Unmarshal(data, &result); err != nil {
		return directory.CensusResult{}, false, fmt.Errorf("failed to decode cached census: %w", err)
	}
	return result, true, nil
}

// Set stores a census result under the key with the given TTL
func (c *RedisCensusCache) Set(ctx context.Context, key string, result directory.CensusResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode census result: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write census cache: %w", err)
	}
	return nil
}

// Invalidate drops a cached census entry
func (c *RedisCensusCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate census cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCensusCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisCensusCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisCensusCache implements the application cache port
var _ appbilling.CensusCache = (*RedisCensusCache)(nil)
