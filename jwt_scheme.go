package tempered

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleanon/Tempered/domain"
	"github.com/aleanon/Tempered/token"
)

// JWTScheme is the concrete authentication scheme shipped with this
// module: stateless HS256 bearer tokens with ban-set revocation, an
// email second factor, and a separately secured elevated token. It
// satisfies every capability interface in this package except the
// extension points.
type JWTScheme struct {
	config Config

	users  UserStore
	bans   BannedTokenStore
	codes  TwoFaCodeStore
	email  EmailClient
	hasher domain.PasswordHasher

	codec             *token.Codec
	elevatedCodec     *token.Codec
	validator         *token.Validator
	elevatedValidator *token.Validator

	audit   *auditDispatcher
	metrics *Metrics
}

var (
	_ Scheme             = (*JWTScheme)(nil)
	_ RegistrationScheme = (*JWTScheme)(nil)
	_ TwoFactorScheme    = (*JWTScheme)(nil)
	_ ElevationScheme    = (*JWTScheme)(nil)
	_ RevocationScheme   = (*JWTScheme)(nil)
	_ AccountScheme      = (*JWTScheme)(nil)
)

// Login authenticates the credentials. Accounts without the second
// factor get a token immediately; accounts with it get a pending
// challenge and must complete Verify2FA.
func (s *JWTScheme) Login(ctx context.Context, creds Credentials) (*LoginOutcome, error) {
	email, err := domain.ParseEmail(creds.Email)
	if err != nil {
		return nil, err
	}
	password, err := domain.ParsePassword(creds.Password)
	if err != nil {
		return nil, err
	}

	validated, err := s.users.AuthenticateUser(ctx, email, password)
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		s.emit(ctx, AuditLogin, email, false, err)
		return nil, s.classify(err)
	}

	if validated.Requires2FA() {
		outcome, err := s.issueChallenge(ctx, validated.Email())
		if err != nil {
			s.metrics.Inc(MetricLoginFailure)
			s.emit(ctx, AuditTwoFaChallenge, email, false, err)
			return nil, err
		}
		s.metrics.Inc(MetricTwoFaChallengeIssued)
		s.emit(ctx, AuditTwoFaChallenge, email, true, nil)
		return outcome, nil
	}

	signed, _, err := s.codec.IssueFor(validated.Email())
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		s.emit(ctx, AuditLogin, email, false, err)
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.emit(ctx, AuditLogin, email, true, nil)

	return &LoginOutcome{
		Token: signed,
		Email: validated.Email(),
	}, nil
}

// Logout bans the presented token, and the elevated token too when one
// is supplied. Both tokens are parsed before anything is banned, so an
// invalid input bans nothing.
func (s *JWTScheme) Logout(ctx context.Context, tok, elevatedToken string) (*LogoutOutput, error) {
	if tok == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.codec.Parse(tok)
	if err != nil {
		s.emit(ctx, AuditLogout, "", false, err)
		return nil, ErrInvalidToken
	}
	canonical, err := s.codec.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	var elevatedCanonical string
	if elevatedToken != "" {
		elevatedCanonical, err = s.elevatedValidator.Canonical(elevatedToken)
		if err != nil {
			s.emit(ctx, AuditLogout, claims.Subject, false, err)
			return nil, ErrInvalidToken
		}
	}

	if err := s.bans.BanToken(ctx, canonical); err != nil {
		s.emit(ctx, AuditLogout, claims.Subject, false, err)
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	s.metrics.Inc(MetricTokenBanned)

	out := &LogoutOutput{BannedToken: true}

	if elevatedCanonical != "" {
		if err := s.bans.BanToken(ctx, elevatedCanonical); err != nil {
			s.emit(ctx, AuditLogout, claims.Subject, false, err)
			return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
		}
		s.metrics.Inc(MetricTokenBanned)
		out.BannedElevatedToken = true
	}

	s.metrics.Inc(MetricLogout)
	s.emit(ctx, AuditLogout, claims.Subject, true, nil)

	return out, nil
}

// VerifyToken checks signature, expiry, and revocation of a regular
// token. The caller sees only ErrInvalidToken on failure; the precise
// cause goes to the audit sink.
func (s *JWTScheme) VerifyToken(ctx context.Context, tok string) (token.Claims, error) {
	return s.verify(ctx, s.validator, tok)
}

// Validator exposes the regular-token validator.
func (s *JWTScheme) Validator() *token.Validator {
	return s.validator
}

// Metrics returns the engine's counters.
func (s *JWTScheme) Metrics() *Metrics {
	return s.metrics
}

// Close flushes and stops the audit dispatcher. The scheme itself holds
// no other background state.
func (s *JWTScheme) Close() {
	s.audit.Close()
}

func (s *JWTScheme) verify(ctx context.Context, v *token.Validator, tok string) (token.Claims, error) {
	if tok == "" {
		return token.Claims{}, ErrMissingToken
	}

	start := time.Now()
	claims, err := v.Validate(ctx, tok)
	s.metrics.Observe(MetricValidateLatency, time.Since(start))

	if err != nil {
		s.metrics.Inc(MetricValidateFailure)
		s.emit(ctx, AuditTokenVerify, claims.Subject, false, err)
		return token.Claims{}, ErrInvalidToken
	}

	s.metrics.Inc(MetricValidateSuccess)
	return claims, nil
}

// classify maps port errors to the caller-facing taxonomy: known
// credential failures pass through as themselves, anything else is
// wrapped as unexpected so backend internals never reach the caller.
func (s *JWTScheme) classify(err error) error {
	for _, known := range []error{
		ErrUserNotFound, ErrIncorrectPassword, ErrUserAlreadyExists,
		ErrInvalidLoginAttemptID, ErrInvalidTwoFaCode,
	} {
		if errors.Is(err, known) {
			return known
		}
	}
	return fmt.Errorf("%w: %v", ErrUnexpected, err)
}

func (s *JWTScheme) emit(ctx context.Context, eventType string, email domain.Email, success bool, cause error) {
	if s.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email.String(),
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	s.audit.Emit(ctx, event)
}
