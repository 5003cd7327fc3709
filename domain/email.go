package domain

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail is returned by ParseEmail for anything that is not a
// syntactically valid, bare address.
var ErrInvalidEmail = errors.New("invalid email address")

// Email is a normalized, syntactically valid email address. It is the
// primary key of the user table and the subject of issued tokens.
// Equality on Email values is equality on the normalized form.
type Email string

// ParseEmail validates and normalizes a raw address. Surrounding
// whitespace is stripped and the address is lowercased before
// validation, so "Alice@Example.COM " and "alice@example.com" parse to
// the same Email.
func ParseEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil {
		return "", ErrInvalidEmail
	}
	// Reject display names and angle-bracket forms; only bare addresses
	// are valid identifiers.
	if addr.Address != normalized {
		return "", ErrInvalidEmail
	}

	return Email(normalized), nil
}

// String returns the normalized address.
func (e Email) String() string {
	return string(e)
}
