package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations tracks access tokens invalidated by logout before their expiry.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NoopRevocations keeps logout stateless: tokens stay valid until they expire.
type NoopRevocations struct{}

func (NoopRevocations) Revoke(context.Context, string, time.Time) error { return nil }

func (NoopRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

const revokedKeyPrefix = "auth:revoked:"

// RedisRevocations stores revoked token ids in Redis until the token would
// have expired anyway.
type RedisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations connects to redisURL and verifies the connection.
func NewRedisRevocations(ctx context.Context, redisURL string) (*RedisRevocations, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRevocations{client: client}, nil
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client.
func (r *RedisRevocations) Close() error {
	return r.client.Close()
}
