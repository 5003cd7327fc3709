package tempered

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleanon/Tempered/domain"
)

// Register creates a new account. The password is hashed before the
// store is touched; the plaintext never reaches a port.
func (s *JWTScheme) Register(ctx context.Context, creds Credentials, requires2FA bool) error {
	email, err := domain.ParseEmail(creds.Email)
	if err != nil {
		return err
	}
	password, err := domain.ParsePassword(creds.Password)
	if err != nil {
		return err
	}

	user, err := domain.NewUser(ctx, s.hasher, email, password, requires2FA)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	if err := s.users.AddUser(ctx, user); err != nil {
		classified := s.classify(err)
		if errors.Is(classified, ErrUserAlreadyExists) {
			s.metrics.Inc(MetricSignupDuplicate)
		}
		s.emit(ctx, AuditSignup, email, false, err)
		return classified
	}

	s.metrics.Inc(MetricSignupSuccess)
	s.emit(ctx, AuditSignup, email, true, nil)

	return nil
}

// RevokeToken bans a single regular token before its natural expiry.
// The ban is keyed by the canonical re-encoding, so any presentation of
// the same (claims, secret) identity is caught afterward.
func (s *JWTScheme) RevokeToken(ctx context.Context, tok string) error {
	if tok == "" {
		return ErrMissingToken
	}

	canonical, err := s.validator.Canonical(tok)
	if err != nil {
		s.emit(ctx, AuditRevoke, "", false, err)
		return ErrInvalidToken
	}

	if err := s.bans.BanToken(ctx, canonical); err != nil {
		s.emit(ctx, AuditRevoke, "", false, err)
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	s.metrics.Inc(MetricTokenBanned)
	s.emit(ctx, AuditRevoke, "", true, nil)

	return nil
}

// ChangePassword replaces the password of the account named by a valid
// elevated token. The elevated token stays usable afterward; only a
// logout bans it.
func (s *JWTScheme) ChangePassword(ctx context.Context, elevatedToken, newPassword string) error {
	claims, err := s.VerifyElevatedToken(ctx, elevatedToken)
	if err != nil {
		return err
	}

	password, err := domain.ParsePassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.SetNewPassword(ctx, claims.Subject, password); err != nil {
		s.emit(ctx, AuditPasswordChange, claims.Subject, false, err)
		return s.classify(err)
	}

	s.metrics.Inc(MetricPasswordChanged)
	s.emit(ctx, AuditPasswordChange, claims.Subject, true, nil)

	return nil
}

// DeleteAccount removes the account named by a valid elevated token and
// bans the presented elevated token so it cannot be reused. Any
// outstanding regular token stays stateless and simply ages out; it can
// no longer authenticate against the deleted account.
func (s *JWTScheme) DeleteAccount(ctx context.Context, elevatedToken string) error {
	claims, err := s.VerifyElevatedToken(ctx, elevatedToken)
	if err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, claims.Subject); err != nil {
		s.emit(ctx, AuditAccountDelete, claims.Subject, false, err)
		return s.classify(err)
	}

	if canonical, err := s.elevatedValidator.Canonical(elevatedToken); err == nil {
		if err := s.bans.BanToken(ctx, canonical); err == nil {
			s.metrics.Inc(MetricTokenBanned)
		}
	}

	s.metrics.Inc(MetricAccountDeleted)
	s.emit(ctx, AuditAccountDelete, claims.Subject, true, nil)

	return nil
}
