package tempered

import (
	"context"

	"github.com/aleanon/Tempered/domain"
	"github.com/aleanon/Tempered/token"
)

// Credentials is a raw email and password pair as received from the
// transport. The scheme validates both into domain types before use.
type Credentials struct {
	Email    string
	Password string
}

// LoginOutcome is the result of a successful Login call. Either Token
// is set (no second factor required), or Requires2Fa is true and
// AttemptID identifies the challenge the caller must answer through
// Verify2FA.
type LoginOutcome struct {
	Token       string
	Requires2Fa bool
	Email       domain.Email
	AttemptID   domain.TwoFaAttemptID
}

// LogoutOutput reports which tokens were banned by a Logout call.
type LogoutOutput struct {
	BannedToken         bool
	BannedElevatedToken bool
}

// Scheme is the core authentication contract every concrete scheme
// satisfies: credential login, token logout, and token verification.
// Optional behaviors are separate capability interfaces below; a caller
// that needs one accepts that interface, so depending on a capability a
// scheme does not implement fails at compile time.
type Scheme interface {
	// Login authenticates credentials. For accounts with the second
	// factor enabled it never returns a token directly; it issues a
	// challenge and returns Requires2Fa.
	Login(ctx context.Context, creds Credentials) (*LoginOutcome, error)

	// Logout bans the presented token, and the elevated token too when
	// one is supplied.
	Logout(ctx context.Context, tok, elevatedToken string) (*LogoutOutput, error)

	// VerifyToken checks signature, expiry, and revocation of a regular
	// token and returns its claims.
	VerifyToken(ctx context.Context, tok string) (token.Claims, error)

	// Validator exposes the regular-token validator for transport
	// middleware that checks tokens outside a full operation.
	Validator() *token.Validator
}

// RegistrationScheme is the capability of creating accounts.
type RegistrationScheme interface {
	Scheme

	// Register creates a new account. Returns ErrUserAlreadyExists if
	// the email is taken.
	Register(ctx context.Context, creds Credentials, requires2FA bool) error
}

// TwoFactorScheme is the capability of completing a two-factor
// challenge issued by Login.
type TwoFactorScheme interface {
	Scheme

	// Verify2FA consumes the pending challenge and returns a fresh
	// token. The challenge is single use: a second call with the same
	// inputs fails with ErrUserNotFound.
	Verify2FA(ctx context.Context, email, attemptID, code string) (string, error)
}

// ElevationScheme is the capability of issuing a separately secured,
// short-lived elevated token for sensitive operations. Elevation always
// re-checks the password, even for callers holding a valid regular
// token.
type ElevationScheme interface {
	Scheme

	Elevate(ctx context.Context, creds Credentials) (string, error)

	// VerifyElevatedToken checks an elevated token against its own
	// secret and the ban set.
	VerifyElevatedToken(ctx context.Context, tok string) (token.Claims, error)

	// ElevatedValidator exposes the elevated-token validator.
	ElevatedValidator() *token.Validator
}

// RevocationScheme is the capability of banning a single token before
// its natural expiry.
type RevocationScheme interface {
	Scheme

	RevokeToken(ctx context.Context, tok string) error
}

// AccountScheme is the capability of mutating an account under an
// elevated token.
type AccountScheme interface {
	ElevationScheme

	// ChangePassword replaces the password of the account named by the
	// elevated token's subject.
	ChangePassword(ctx context.Context, elevatedToken, newPassword string) error

	// DeleteAccount removes the account named by the elevated token's
	// subject and bans the presented elevated token.
	DeleteAccount(ctx context.Context, elevatedToken string) error
}

// PasswordResetScheme is an extension point for email-driven password
// recovery. No scheme in this module implements it yet.
type PasswordResetScheme interface {
	Scheme

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, resetToken, newPassword string) error
}

// OAuth2Scheme is an extension point for delegated-identity schemes.
// No scheme in this module implements it.
type OAuth2Scheme interface {
	Scheme

	AuthorizationURL(ctx context.Context, state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
}
