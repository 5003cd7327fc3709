package tempered

import (
	"context"

	"github.com/aleanon/Tempered/domain"
)

// UserStore is the persistence port for account records. Backends must
// resolve concurrent AddUser calls for the same email deterministically
// to exactly one winner; the loser sees ErrUserAlreadyExists.
type UserStore interface {
	// AddUser persists a new account. Returns ErrUserAlreadyExists if
	// the email is taken.
	AddUser(ctx context.Context, user domain.User) error

	// AuthenticateUser checks the candidate password against the stored
	// credential. Returns ErrUserNotFound or ErrIncorrectPassword on
	// failure; a ValidatedUser is only ever produced by success.
	AuthenticateUser(ctx context.Context, email domain.Email, password domain.Password) (domain.ValidatedUser, error)

	// GetUser returns the account record, or ErrUserNotFound.
	GetUser(ctx context.Context, email domain.Email) (domain.User, error)

	// SetNewPassword rehashes and stores a replacement password.
	// Returns ErrUserNotFound if the account does not exist.
	SetNewPassword(ctx context.Context, email domain.Email, password domain.Password) error

	// DeleteUser removes the account record, or returns ErrUserNotFound.
	DeleteUser(ctx context.Context, email domain.Email) error
}

// BannedTokenStore is the revocation denylist. Bans carry a TTL so old
// entries age out; ContainsToken never distinguishes "not banned" from
// "expired ban". Concurrent BanToken and ContainsToken calls must be
// linearizable per token.
type BannedTokenStore interface {
	// BanToken records the token as revoked. Idempotent.
	BanToken(ctx context.Context, token string) error

	// ContainsToken reports whether the token is currently banned.
	ContainsToken(ctx context.Context, token string) (bool, error)
}

// TwoFaCodeStore holds at most one pending two-factor challenge per
// email.
type TwoFaCodeStore interface {
	// StoreCode records a challenge, replacing any prior pending
	// challenge for the email. Superseded codes become unverifiable.
	StoreCode(ctx context.Context, email domain.Email, attemptID domain.TwoFaAttemptID, code domain.TwoFaCode) error

	// Validate checks the submitted pair against the pending challenge
	// without mutating state. Returns ErrUserNotFound if nothing is
	// pending, ErrInvalidLoginAttemptID if the attempt id differs, or
	// ErrInvalidTwoFaCode if the code differs.
	Validate(ctx context.Context, email domain.Email, attemptID domain.TwoFaAttemptID, code domain.TwoFaCode) error

	// GetCode returns the pending challenge for comparison by the
	// caller, or ErrUserNotFound.
	GetCode(ctx context.Context, email domain.Email) (domain.TwoFaAttemptID, domain.TwoFaCode, error)

	// Delete removes the pending challenge. Returns ErrUserNotFound if
	// nothing is pending.
	Delete(ctx context.Context, email domain.Email) error
}

// EmailClient delivers outbound mail. Failures are surfaced to the
// caller, not retried here; retry policy belongs to the transport
// layer.
type EmailClient interface {
	SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error
}
