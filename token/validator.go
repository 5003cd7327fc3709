package token

import (
	"context"
	"fmt"
)

// BanChecker reports whether a canonical token string has been revoked.
// It is the read side of the banned-token store.
type BanChecker interface {
	ContainsToken(ctx context.Context, token string) (bool, error)
}

// Validator checks tokens for one token family: signature, expiry, and
// revocation.
type Validator struct {
	codec  *Codec
	banned BanChecker
}

// NewValidator pairs a codec with the ban set it consults.
func NewValidator(codec *Codec, banned BanChecker) *Validator {
	return &Validator{codec: codec, banned: banned}
}

// Validate parses the token, re-encodes the recovered claims into the
// canonical string, and checks that string against the ban set. The
// re-encode step normalizes the token so a ban recorded at logout time
// matches however the client later presents it.
func (v *Validator) Validate(ctx context.Context, tokenStr string) (Claims, error) {
	claims, err := v.codec.Parse(tokenStr)
	if err != nil {
		return Claims{}, err
	}

	canonical, err := v.codec.Issue(claims)
	if err != nil {
		return Claims{}, fmt.Errorf("re-encoding claims: %w", err)
	}

	banned, err := v.banned.ContainsToken(ctx, canonical)
	if err != nil {
		return Claims{}, fmt.Errorf("checking ban set: %w", err)
	}
	if banned {
		return Claims{}, ErrBanned
	}

	return claims, nil
}

// Canonical returns the canonical string form of a token, suitable for
// recording in the ban set. It parses and re-encodes, so the result is
// independent of client-side re-serialization quirks.
func (v *Validator) Canonical(tokenStr string) (string, error) {
	claims, err := v.codec.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return v.codec.Issue(claims)
}
