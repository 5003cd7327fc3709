package memstore

import (
	"context"
	"sync"
	"time"

	tempered "github.com/aleanon/Tempered"
)

// BannedTokenStore is an in-memory revocation set. Each ban carries an
// expiry; expired entries are dropped lazily on lookup, so a token that
// outlives its ban becomes valid again exactly as a TTL-based backend
// would behave.
type BannedTokenStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	banned map[string]time.Time
}

var _ tempered.BannedTokenStore = (*BannedTokenStore)(nil)

func NewBannedTokenStore(ttl time.Duration) *BannedTokenStore {
	return &BannedTokenStore{
		ttl:    ttl,
		now:    time.Now,
		banned: make(map[string]time.Time),
	}
}

func (s *BannedTokenStore) BanToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.banned[token] = s.now().Add(s.ttl)
	return nil
}

func (s *BannedTokenStore) ContainsToken(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.banned[token]
	if !exists {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.banned, token)
		return false, nil
	}
	return true, nil
}
