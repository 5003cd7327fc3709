package tempered

import "errors"

var (
	// ErrUserAlreadyExists is returned by Register when the email is
	// already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user record exists for the
	// email.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned when the candidate password does
	// not match the stored credential.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrInvalidLoginAttemptID is returned by Verify2FA when the
	// submitted attempt id does not match the pending challenge.
	ErrInvalidLoginAttemptID = errors.New("invalid login attempt id")
	// ErrInvalidTwoFaCode is returned by Verify2FA when the submitted
	// code does not match the pending challenge.
	ErrInvalidTwoFaCode = errors.New("invalid two-factor code")
	// ErrInvalidToken is the caller-facing class for any token failure:
	// bad signature, malformed, expired, or banned. The precise cause is
	// wrapped underneath for telemetry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingToken is returned when an operation requiring a token is
	// called with an empty string.
	ErrMissingToken = errors.New("missing token")
	// ErrUnexpected wraps a storage or backend failure. Backend detail
	// is carried in the wrapped error, never in the message shown to
	// end users.
	ErrUnexpected = errors.New("unexpected error")
)
