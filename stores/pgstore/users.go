package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	tempered "github.com/aleanon/Tempered"
	"github.com/aleanon/Tempered/domain"
)

// Postgres error code for a unique constraint violation.
const uniqueViolation = "23505"

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
    email         TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    requires_2fa  BOOLEAN NOT NULL DEFAULT FALSE
)`

// Open opens a pooled connection through the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	return db, nil
}

// UserStore is a PostgreSQL-backed user table.
type UserStore struct {
	db     *sql.DB
	hasher domain.PasswordHasher
}

var _ tempered.UserStore = (*UserStore)(nil)

func NewUserStore(db *sql.DB, hasher domain.PasswordHasher) *UserStore {
	return &UserStore{
		db:     db,
		hasher: hasher,
	}
}

// Migrate creates the users table if it does not exist.
func (s *UserStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("migrating users table: %w", err)
	}
	return nil
}

func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES ($1, $2, $3)`,
		user.Email.String(), string(user.PasswordHash), user.Requires2FA,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return tempered.ErrUserAlreadyExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *UserStore) AuthenticateUser(ctx context.Context, email domain.Email, password domain.Password) (domain.ValidatedUser, error) {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return domain.ValidatedUser{}, err
	}

	if !user.PasswordMatches(ctx, s.hasher, password) {
		return domain.ValidatedUser{}, tempered.ErrIncorrectPassword
	}

	return domain.NewValidatedUser(user.Email, user.Requires2FA), nil
}

func (s *UserStore) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	var (
		hash        string
		requires2FA bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash, requires_2fa FROM users WHERE email = $1`,
		email.String(),
	).Scan(&hash, &requires2FA)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, tempered.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("reading user: %w", err)
	}

	return domain.User{
		Email:        email,
		PasswordHash: domain.PasswordHash(hash),
		Requires2FA:  requires2FA,
	}, nil
}

func (s *UserStore) SetNewPassword(ctx context.Context, email domain.Email, password domain.Password) error {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE email = $2`,
		string(hash), email.String(),
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if affected == 0 {
		return tempered.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) DeleteUser(ctx context.Context, email domain.Email) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE email = $1`,
		email.String(),
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if affected == 0 {
		return tempered.ErrUserNotFound
	}
	return nil
}
