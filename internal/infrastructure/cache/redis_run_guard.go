package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisRunGuard implements RunGuard on Redis SETNX, so supplier runs and
// in-flight request ids are single-flighted across all instances.
type RedisRunGuard struct {
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

// NewRedisRunGuard creates a Redis-backed run guard and verifies the
// connection.
func NewRedisRunGuard(cfg RedisConfig) (*RedisRunGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunGuard{
		client:    client,
		keyPrefix: "runguard:",
	}, nil
}

// NewRedisRunGuardWithClient creates a guard sharing an existing client.
// Useful for testing or when one client serves several components.
func NewRedisRunGuardWithClient(client *redis.Client, keyPrefix string) *RedisRunGuard {
	if keyPrefix == "" {
		keyPrefix = "runguard:"
	}
	return &RedisRunGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims the key with SETNX and a TTL in one atomic operation.
func (g *RedisRunGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run guard: %w", err)
	}
	return ok, nil
}

// Release frees the key.
func (g *RedisRunGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release run guard: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisRunGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisRunGuard implements RunGuard
var _ shared.RunGuard = (*RedisRunGuard)(nil)
