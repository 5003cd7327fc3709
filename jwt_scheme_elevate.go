package tempered

import (
	"context"
	"fmt"

	"github.com/aleanon/Tempered/domain"
	"github.com/aleanon/Tempered/token"
)

// Elevate re-authenticates the credentials and issues an elevated
// token. Holding a valid regular token is neither necessary nor
// sufficient: the password is always re-checked, which is the point of
// the step-up. The second factor is not re-run here; elevation proves
// presence, not enrollment.
func (s *JWTScheme) Elevate(ctx context.Context, creds Credentials) (string, error) {
	email, err := domain.ParseEmail(creds.Email)
	if err != nil {
		return "", err
	}
	password, err := domain.ParsePassword(creds.Password)
	if err != nil {
		return "", err
	}

	validated, err := s.users.AuthenticateUser(ctx, email, password)
	if err != nil {
		s.metrics.Inc(MetricElevateFailure)
		s.emit(ctx, AuditElevate, email, false, err)
		return "", s.classify(err)
	}

	signed, _, err := s.elevatedCodec.IssueFor(validated.Email())
	if err != nil {
		s.metrics.Inc(MetricElevateFailure)
		s.emit(ctx, AuditElevate, email, false, err)
		return "", fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	s.metrics.Inc(MetricElevateSuccess)
	s.emit(ctx, AuditElevate, email, true, nil)

	return signed, nil
}

// VerifyElevatedToken checks an elevated token against the elevated
// secret and the ban set. Regular and elevated tokens are never
// interchangeable: a regular token fails here on signature.
func (s *JWTScheme) VerifyElevatedToken(ctx context.Context, tok string) (token.Claims, error) {
	return s.verify(ctx, s.elevatedValidator, tok)
}

// ElevatedValidator exposes the elevated-token validator.
func (s *JWTScheme) ElevatedValidator() *token.Validator {
	return s.elevatedValidator
}
