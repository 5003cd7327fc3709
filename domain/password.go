package domain

import (
	"context"
	"errors"
)

const minPasswordLength = 8

var (
	// ErrPasswordEmpty is returned by ParsePassword for an empty candidate.
	ErrPasswordEmpty = errors.New("password is empty")
	// ErrPasswordTooShort is returned by ParsePassword when the candidate
	// is below the policy minimum.
	ErrPasswordTooShort = errors.New("password is too short")
)

// Password is a plaintext candidate secret awaiting hashing or
// verification. The raw value is reachable only through Expose; the
// default string conversion is redacted so a Password can never leak
// through logging or formatting by accident.
type Password struct {
	secret string
}

// ParsePassword validates a raw candidate against the password policy.
func ParsePassword(raw string) (Password, error) {
	if raw == "" {
		return Password{}, ErrPasswordEmpty
	}
	if len(raw) < minPasswordLength {
		return Password{}, ErrPasswordTooShort
	}
	return Password{secret: raw}, nil
}

// Expose returns the raw secret. Call it only at the point the bytes are
// actually needed, which is inside the hashing engine.
func (p Password) Expose() string {
	return p.secret
}

// String implements fmt.Stringer and always redacts.
func (p Password) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer and always redacts, covering %#v.
func (p Password) GoString() string {
	return "domain.Password{[REDACTED]}"
}

// PasswordHash is a salted password hash in PHC string format. It is
// produced only by the hashing engine and is opaque everywhere else.
type PasswordHash string

// PasswordHasher is the hashing engine contract the domain depends on.
// Verify fails closed: a malformed stored hash verifies as false rather
// than returning an error.
type PasswordHasher interface {
	Hash(ctx context.Context, password Password) (PasswordHash, error)
	Verify(ctx context.Context, hash PasswordHash, candidate Password) bool
}
