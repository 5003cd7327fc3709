package memstore

import (
	"context"
	"crypto/subtle"
	"sync"

	tempered "github.com/aleanon/Tempered"
	"github.com/aleanon/Tempered/domain"
)

type challenge struct {
	attemptID domain.TwoFaAttemptID
	code      domain.TwoFaCode
}

// TwoFaCodeStore holds at most one pending challenge per email in
// memory. StoreCode overwrites, so a new login attempt supersedes any
// outstanding code.
type TwoFaCodeStore struct {
	mu      sync.RWMutex
	pending map[domain.Email]challenge
}

var _ tempered.TwoFaCodeStore = (*TwoFaCodeStore)(nil)

func NewTwoFaCodeStore() *TwoFaCodeStore {
	return &TwoFaCodeStore{
		pending: make(map[domain.Email]challenge),
	}
}

func (s *TwoFaCodeStore) StoreCode(ctx context.Context, email domain.Email, attemptID domain.TwoFaAttemptID, code domain.TwoFaCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[email] = challenge{attemptID: attemptID, code: code}
	return nil
}

func (s *TwoFaCodeStore) Validate(ctx context.Context, email domain.Email, attemptID domain.TwoFaAttemptID, code domain.TwoFaCode) error {
	s.mu.RLock()
	ch, exists := s.pending[email]
	s.mu.RUnlock()

	if !exists {
		return tempered.ErrUserNotFound
	}
	if ch.attemptID != attemptID {
		return tempered.ErrInvalidLoginAttemptID
	}
	if subtle.ConstantTimeCompare([]byte(ch.code), []byte(code)) != 1 {
		return tempered.ErrInvalidTwoFaCode
	}
	return nil
}

func (s *TwoFaCodeStore) GetCode(ctx context.Context, email domain.Email) (domain.TwoFaAttemptID, domain.TwoFaCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, exists := s.pending[email]
	if !exists {
		return "", "", tempered.ErrUserNotFound
	}
	return ch.attemptID, ch.code, nil
}

func (s *TwoFaCodeStore) Delete(ctx context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[email]; !exists {
		return tempered.ErrUserNotFound
	}
	delete(s.pending, email)
	return nil
}
