package domain

import "context"

// User is an account record. Email is the primary key; the plaintext
// password is hashed at construction and never stored.
type User struct {
	Email        Email
	PasswordHash PasswordHash
	Requires2FA  bool
}

// NewUser builds an account record, hashing the plaintext password
// through the engine. The plaintext is not retained.
func NewUser(ctx context.Context, hasher PasswordHasher, email Email, password Password, requires2FA bool) (User, error) {
	hash, err := hasher.Hash(ctx, password)
	if err != nil {
		return User{}, err
	}
	return User{
		Email:        email,
		PasswordHash: hash,
		Requires2FA:  requires2FA,
	}, nil
}

// PasswordMatches reports whether the candidate matches the stored hash.
// It never fails: verification errors fold into false.
func (u User) PasswordMatches(ctx context.Context, hasher PasswordHasher, candidate Password) bool {
	return hasher.Verify(ctx, u.PasswordHash, candidate)
}

// ValidatedUser is the outcome of a successful credential check. It is
// only ever produced by a UserStore's AuthenticateUser and carries the
// branch the login flow must take next.
type ValidatedUser struct {
	email       Email
	requires2FA bool
}

// NewValidatedUser is intended for UserStore implementations; nothing
// else should mint one.
func NewValidatedUser(email Email, requires2FA bool) ValidatedUser {
	return ValidatedUser{email: email, requires2FA: requires2FA}
}

// Email returns the authenticated identity.
func (v ValidatedUser) Email() Email {
	return v.email
}

// Requires2FA reports whether a second factor must be completed before a
// token may be issued.
func (v ValidatedUser) Requires2FA() bool {
	return v.requires2FA
}
