// Package blacklist provides the redis-backed revoked-token store. Redis
// key TTLs handle expiry natively, so no sweep job is needed for this
// backend.
package blacklist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "blacklist:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Add marks a fingerprint as revoked until expiresAt. SET is an upsert, so
// repeated revocation of the same token is a no-op. Tokens already past
// their expiry are skipped; they fail verification on their own.
func (s *RedisStore) Add(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, keyPrefix+fingerprint, "1", ttl).Err(); err != nil {
		log.Error().Err(err).Msg("Failed to blacklist token")
		return err
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, fingerprint string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+fingerprint).Result()
	if err != nil {
		log.Error().Err(err).Msg("Failed to check token blacklist")
		return false, err
	}
	return n > 0, nil
}
