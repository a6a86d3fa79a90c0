package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations guarda os jti de tokens encerrados via logout
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocations mantém cada jti revogado até a expiração do próprio token
type RedisRevocations struct{ R *redis.Client }

func NewRedisRevocations(r *redis.Client) *RedisRevocations { return &RedisRevocations{R: r} }

func keyRevoked(tokenID string) string { return "auth:revoked:" + tokenID }

func (c *RedisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // já expirou, nada a guardar
	}
	return c.R.Set(ctx, keyRevoked(tokenID), 1, ttl).Err()
}

func (c *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.R.Exists(ctx, keyRevoked(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
