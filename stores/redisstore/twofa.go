package redisstore

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	tempered "github.com/aleanon/Tempered"
	"github.com/aleanon/Tempered/domain"
)

const (
	twoFaKeyPrefix = "two_fa_code:"
	defaultCodeTTL = 10 * time.Minute
)

type twoFaRecord struct {
	AttemptID string `json:"attempt_id"`
	Code      string `json:"code"`
}

// TwoFaCodeStore keeps the single pending challenge per email in Redis.
// SET with a TTL gives the overwrite semantics the port requires: a new
// login attempt replaces the old challenge, and unanswered challenges
// expire on their own.
type TwoFaCodeStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

var _ tempered.TwoFaCodeStore = (*TwoFaCodeStore)(nil)

// NewTwoFaCodeStore builds a challenge table. A non-positive ttl falls
// back to ten minutes.
func NewTwoFaCodeStore(client redis.UniversalClient, ttl time.Duration) *TwoFaCodeStore {
	if ttl <= 0 {
		ttl = defaultCodeTTL
	}
	return &TwoFaCodeStore{
		redis: client,
		ttl:   ttl,
	}
}

func twoFaKey(email domain.Email) string {
	return twoFaKeyPrefix + email.String()
}

func (s *TwoFaCodeStore) StoreCode(ctx context.Context, email domain.Email, attemptID domain.TwoFaAttemptID, code domain.TwoFaCode) error {
	encoded, err := json.Marshal(twoFaRecord{
		AttemptID: attemptID.String(),
		Code:      code.String(),
	})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, twoFaKey(email), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *TwoFaCodeStore) GetCode(ctx context.Context, email domain.Email) (domain.TwoFaAttemptID, domain.TwoFaCode, error) {
	data, err := s.redis.Get(ctx, twoFaKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", tempered.ErrUserNotFound
		}
		return "", "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var record twoFaRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", "", fmt.Errorf("corrupt challenge record: %w", err)
	}

	attemptID, err := domain.ParseTwoFaAttemptID(record.AttemptID)
	if err != nil {
		return "", "", fmt.Errorf("corrupt challenge record: %w", err)
	}
	code, err := domain.ParseTwoFaCode(record.Code)
	if err != nil {
		return "", "", fmt.Errorf("corrupt challenge record: %w", err)
	}

	return attemptID, code, nil
}

func (s *TwoFaCodeStore) Validate(ctx context.Context, email domain.Email, attemptID domain.TwoFaAttemptID, code domain.TwoFaCode) error {
	storedAttemptID, storedCode, err := s.GetCode(ctx, email)
	if err != nil {
		return err
	}

	if storedAttemptID != attemptID {
		return tempered.ErrInvalidLoginAttemptID
	}
	if subtle.ConstantTimeCompare([]byte(storedCode), []byte(code)) != 1 {
		return tempered.ErrInvalidTwoFaCode
	}
	return nil
}

func (s *TwoFaCodeStore) Delete(ctx context.Context, email domain.Email) error {
	removed, err := s.redis.Del(ctx, twoFaKey(email)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if removed == 0 {
		return tempered.ErrUserNotFound
	}
	return nil
}
