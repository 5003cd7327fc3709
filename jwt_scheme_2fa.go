package tempered

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/aleanon/Tempered/domain"
)

const twoFaEmailSubject = "Your verification code"

// issueChallenge mints a fresh attempt id and code, stores them as the
// single pending challenge for the email, and mails the code.
// Replacing the stored record comes first: if the email send fails the
// old challenge is already unverifiable, which is the safe direction.
func (s *JWTScheme) issueChallenge(ctx context.Context, email domain.Email) (*LoginOutcome, error) {
	attemptID := domain.NewTwoFaAttemptID()
	code, err := domain.NewTwoFaCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	if err := s.codes.StoreCode(ctx, email, attemptID, code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	content := fmt.Sprintf("Your two-factor code is %s. It is valid for this login attempt only.", code)
	if err := s.email.SendEmail(ctx, email, twoFaEmailSubject, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	return &LoginOutcome{
		Requires2Fa: true,
		Email:       email,
		AttemptID:   attemptID,
	}, nil
}

// Verify2FA completes a pending challenge and issues a token. The
// attempt id must match the one handed out by Login and the code must
// match the one mailed; on success the challenge is deleted so it can
// never be replayed.
func (s *JWTScheme) Verify2FA(ctx context.Context, email, attemptID, code string) (string, error) {
	parsedEmail, err := domain.ParseEmail(email)
	if err != nil {
		return "", err
	}
	parsedAttemptID, err := domain.ParseTwoFaAttemptID(attemptID)
	if err != nil {
		return "", err
	}
	parsedCode, err := domain.ParseTwoFaCode(code)
	if err != nil {
		return "", err
	}

	storedAttemptID, storedCode, err := s.codes.GetCode(ctx, parsedEmail)
	if err != nil {
		s.metrics.Inc(MetricTwoFaVerifyFailure)
		s.emit(ctx, AuditTwoFaVerify, parsedEmail, false, err)
		return "", s.classify(err)
	}

	if storedAttemptID != parsedAttemptID {
		s.metrics.Inc(MetricTwoFaVerifyFailure)
		s.emit(ctx, AuditTwoFaVerify, parsedEmail, false, ErrInvalidLoginAttemptID)
		return "", ErrInvalidLoginAttemptID
	}
	if subtle.ConstantTimeCompare([]byte(storedCode), []byte(parsedCode)) != 1 {
		s.metrics.Inc(MetricTwoFaVerifyFailure)
		s.emit(ctx, AuditTwoFaVerify, parsedEmail, false, ErrInvalidTwoFaCode)
		return "", ErrInvalidTwoFaCode
	}

	if err := s.codes.Delete(ctx, parsedEmail); err != nil {
		s.metrics.Inc(MetricTwoFaVerifyFailure)
		s.emit(ctx, AuditTwoFaVerify, parsedEmail, false, err)
		return "", s.classify(err)
	}

	signed, _, err := s.codec.IssueFor(parsedEmail)
	if err != nil {
		s.metrics.Inc(MetricTwoFaVerifyFailure)
		s.emit(ctx, AuditTwoFaVerify, parsedEmail, false, err)
		return "", fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	s.metrics.Inc(MetricTwoFaVerifySuccess)
	s.metrics.Inc(MetricLoginSuccess)
	s.emit(ctx, AuditTwoFaVerify, parsedEmail, true, nil)

	return signed, nil
}
