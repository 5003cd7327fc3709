package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

var (
	// ErrInvalidAttemptID is returned by ParseTwoFaAttemptID for anything
	// that is not a well-formed attempt identifier.
	ErrInvalidAttemptID = errors.New("invalid two-factor attempt id")
	// ErrInvalidCode is returned by ParseTwoFaCode for anything that is
	// not a well-formed challenge code.
	ErrInvalidCode = errors.New("invalid two-factor code")
)

const twoFaCodeDigits = 6

// TwoFaAttemptID is the opaque handle for one login challenge. A fresh
// one is issued per challenge and must be presented on verification.
type TwoFaAttemptID string

// NewTwoFaAttemptID mints a random, unguessable attempt identifier.
func NewTwoFaAttemptID() TwoFaAttemptID {
	return TwoFaAttemptID(uuid.NewString())
}

// ParseTwoFaAttemptID validates a caller-supplied attempt identifier.
func ParseTwoFaAttemptID(raw string) (TwoFaAttemptID, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", ErrInvalidAttemptID
	}
	return TwoFaAttemptID(raw), nil
}

// String returns the identifier verbatim; attempt ids are not secret.
func (id TwoFaAttemptID) String() string {
	return string(id)
}

// TwoFaCode is a one-time challenge secret, bound to the (Email,
// TwoFaAttemptID) pair that issued it and deleted after a single
// successful use.
type TwoFaCode string

// NewTwoFaCode mints a random six-digit challenge code.
func NewTwoFaCode() (TwoFaCode, error) {
	max := big.NewInt(1)
	for i := 0; i < twoFaCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return TwoFaCode(fmt.Sprintf("%0*d", twoFaCodeDigits, n)), nil
}

// ParseTwoFaCode validates a caller-supplied challenge code.
func ParseTwoFaCode(raw string) (TwoFaCode, error) {
	if len(raw) != twoFaCodeDigits {
		return "", ErrInvalidCode
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", ErrInvalidCode
		}
	}
	return TwoFaCode(raw), nil
}

// String returns the code. Codes are short-lived secrets; callers should
// only surface them in the challenge email itself.
func (c TwoFaCode) String() string {
	return string(c)
}
