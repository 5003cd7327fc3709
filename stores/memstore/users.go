package memstore

import (
	"context"
	"sync"

	tempered "github.com/aleanon/Tempered"
	"github.com/aleanon/Tempered/domain"
)

// UserStore is a mutex-guarded user table keyed by email. Concurrent
// AddUser calls for the same email resolve under the lock, so exactly
// one caller wins and the rest see ErrUserAlreadyExists.
type UserStore struct {
	hasher domain.PasswordHasher

	mu    sync.RWMutex
	users map[domain.Email]domain.User
}

var _ tempered.UserStore = (*UserStore)(nil)

// NewUserStore builds an empty user table. The hasher is used by
// AuthenticateUser and SetNewPassword.
func NewUserStore(hasher domain.PasswordHasher) *UserStore {
	return &UserStore{
		hasher: hasher,
		users:  make(map[domain.Email]domain.User),
	}
}

func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return tempered.ErrUserAlreadyExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *UserStore) AuthenticateUser(ctx context.Context, email domain.Email, password domain.Password) (domain.ValidatedUser, error) {
	s.mu.RLock()
	user, exists := s.users[email]
	s.mu.RUnlock()

	if !exists {
		return domain.ValidatedUser{}, tempered.ErrUserNotFound
	}

	// verification runs outside the lock; it is CPU-bound
	if !user.PasswordMatches(ctx, s.hasher, password) {
		return domain.ValidatedUser{}, tempered.ErrIncorrectPassword
	}

	return domain.NewValidatedUser(user.Email, user.Requires2FA), nil
}

func (s *UserStore) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[email]
	if !exists {
		return domain.User{}, tempered.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) SetNewPassword(ctx context.Context, email domain.Email, password domain.Password) error {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[email]
	if !exists {
		return tempered.ErrUserNotFound
	}
	user.PasswordHash = hash
	s.users[email] = user
	return nil
}

func (s *UserStore) DeleteUser(ctx context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; !exists {
		return tempered.ErrUserNotFound
	}
	delete(s.users, email)
	return nil
}
