package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	tempered "github.com/aleanon/Tempered"
)

// ErrRedisUnavailable wraps any Redis transport failure surfaced by
// this package.
var ErrRedisUnavailable = errors.New("redis unavailable")

const bannedKeyPrefix = "banned_token:"

// BannedTokenStore is a Redis-backed revocation set. Each ban is a key
// with a TTL; once the TTL lapses the entry disappears and the token is
// no longer reported banned.
type BannedTokenStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

var _ tempered.BannedTokenStore = (*BannedTokenStore)(nil)

// NewBannedTokenStore builds a revocation set that retains bans for
// ttl. The ttl must cover the longest token lifetime or a banned token
// comes back to life before it expires.
func NewBannedTokenStore(client redis.UniversalClient, ttl time.Duration) *BannedTokenStore {
	return &BannedTokenStore{
		redis: client,
		ttl:   ttl,
	}
}

func bannedKey(token string) string {
	return bannedKeyPrefix + token
}

func (s *BannedTokenStore) BanToken(ctx context.Context, token string) error {
	if err := s.redis.Set(ctx, bannedKey(token), 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *BannedTokenStore) ContainsToken(ctx context.Context, token string) (bool, error) {
	count, err := s.redis.Exists(ctx, bannedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return count > 0, nil
}
