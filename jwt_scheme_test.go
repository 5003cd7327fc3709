package tempered_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tempered "github.com/aleanon/Tempered"
	"github.com/aleanon/Tempered/domain"
	"github.com/aleanon/Tempered/email"
	"github.com/aleanon/Tempered/password"
	"github.com/aleanon/Tempered/stores/memstore"
)

func testHasher(t *testing.T) *password.Argon2 {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	return hasher
}

type testEnv struct {
	scheme *tempered.JWTScheme
	users  *memstore.UserStore
	bans   *memstore.BannedTokenStore
	codes  *memstore.TwoFaCodeStore
	mailer *email.MockClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher := testHasher(t)
	env := &testEnv{
		users:  memstore.NewUserStore(hasher),
		bans:   memstore.NewBannedTokenStore(time.Hour),
		codes:  memstore.NewTwoFaCodeStore(),
		mailer: email.NewMockClient(),
	}

	cfg := tempered.Config{
		Token: tempered.TokenConfig{
			Secret: []byte("regular-token-test-secret"),
			TTL:    10 * time.Minute,
			Name:   "auth",
		},
		ElevatedToken: tempered.TokenConfig{
			Secret: []byte("elevated-token-test-secret"),
			TTL:    5 * time.Minute,
			Name:   "auth_elevated",
		},
		Metrics: tempered.MetricsConfig{Enabled: true},
	}

	scheme, err := tempered.New().
		WithConfig(cfg).
		WithUserStore(env.users).
		WithBannedTokenStore(env.bans).
		WithTwoFaCodeStore(env.codes).
		WithEmailClient(env.mailer).
		WithPasswordHasher(hasher).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(scheme.Close)

	env.scheme = scheme
	return env
}

func register(t *testing.T, env *testEnv, emailAddr, pass string, requires2FA bool) {
	t.Helper()
	err := env.scheme.Register(context.Background(), tempered.Credentials{Email: emailAddr, Password: pass}, requires2FA)
	if err != nil {
		t.Fatalf("Register(%q): %v", emailAddr, err)
	}
}

func TestSignupLoginLogoutScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	outcome, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if outcome.Requires2Fa || outcome.Token == "" {
		t.Fatalf("outcome = %+v, want direct token", outcome)
	}

	claims, err := env.scheme.VerifyToken(ctx, outcome.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject.String() != "a@b.com" {
		t.Fatalf("subject = %q", claims.Subject)
	}

	out, err := env.scheme.Logout(ctx, outcome.Token, "")
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !out.BannedToken || out.BannedElevatedToken {
		t.Fatalf("logout output = %+v", out)
	}

	if _, err := env.scheme.VerifyToken(ctx, outcome.Token); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("VerifyToken after logout: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	err := env.scheme.Register(ctx, tempered.Credentials{Email: "a@b.com", Password: "OtherPass1"}, true)
	if !errors.Is(err, tempered.ErrUserAlreadyExists) {
		t.Fatalf("err = %v, want ErrUserAlreadyExists", err)
	}

	// the original credentials still work
	if _, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"}); err != nil {
		t.Fatalf("Login after duplicate signup: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	_, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "WrongPass1"})
	if !errors.Is(err, tempered.ErrIncorrectPassword) {
		t.Fatalf("wrong password: %v", err)
	}

	_, err = env.scheme.Login(ctx, tempered.Credentials{Email: "nobody@b.com", Password: "Password1"})
	if !errors.Is(err, tempered.ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}

	_, err = env.scheme.Login(ctx, tempered.Credentials{Email: "not-an-email", Password: "Password1"})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("malformed email: %v", err)
	}

	_, err = env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "short"})
	if !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("short password: %v", err)
	}
}

func TestTwoFactorLoginFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", true)

	outcome, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !outcome.Requires2Fa {
		t.Fatal("expected a two-factor challenge")
	}
	if outcome.Token != "" {
		t.Fatal("a 2FA login must never return a token directly")
	}

	sent := env.mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d emails, want exactly 1", len(sent))
	}

	_, code, err := env.codes.GetCode(ctx, outcome.Email)
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if !strings.Contains(sent[0].Content, code.String()) {
		t.Fatal("challenge email does not contain the code")
	}

	tok, err := env.scheme.Verify2FA(ctx, "a@b.com", outcome.AttemptID.String(), code.String())
	if err != nil {
		t.Fatalf("Verify2FA: %v", err)
	}
	if _, err := env.scheme.VerifyToken(ctx, tok); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	// single use: the challenge is gone after one success
	_, err = env.scheme.Verify2FA(ctx, "a@b.com", outcome.AttemptID.String(), code.String())
	if !errors.Is(err, tempered.ErrUserNotFound) {
		t.Fatalf("replayed Verify2FA: %v", err)
	}
}

func TestVerify2FARejectsMismatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", true)

	outcome, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, code, err := env.codes.GetCode(ctx, outcome.Email)
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}

	_, err = env.scheme.Verify2FA(ctx, "a@b.com", domain.NewTwoFaAttemptID().String(), code.String())
	if !errors.Is(err, tempered.ErrInvalidLoginAttemptID) {
		t.Fatalf("foreign attempt id: %v", err)
	}

	wrong := "000000"
	if wrong == code.String() {
		wrong = "000001"
	}
	_, err = env.scheme.Verify2FA(ctx, "a@b.com", outcome.AttemptID.String(), wrong)
	if !errors.Is(err, tempered.ErrInvalidTwoFaCode) {
		t.Fatalf("wrong code: %v", err)
	}

	// failed attempts must not consume the challenge
	if _, err := env.scheme.Verify2FA(ctx, "a@b.com", outcome.AttemptID.String(), code.String()); err != nil {
		t.Fatalf("Verify2FA after failures: %v", err)
	}
}

func TestNewLoginSupersedesChallenge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", true)

	first, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, firstCode, err := env.codes.GetCode(ctx, first.Email)
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}

	second, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}

	_, err = env.scheme.Verify2FA(ctx, "a@b.com", first.AttemptID.String(), firstCode.String())
	if !errors.Is(err, tempered.ErrInvalidLoginAttemptID) {
		t.Fatalf("superseded challenge: %v", err)
	}

	_, secondCode, err := env.codes.GetCode(ctx, second.Email)
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if _, err := env.scheme.Verify2FA(ctx, "a@b.com", second.AttemptID.String(), secondCode.String()); err != nil {
		t.Fatalf("Verify2FA on fresh challenge: %v", err)
	}
}

func TestElevateRequiresPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	outcome, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	// holding a valid regular token does not soften elevation
	if _, err := env.scheme.VerifyToken(ctx, outcome.Token); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	tok, err := env.scheme.Elevate(ctx, tempered.Credentials{Email: "a@b.com", Password: "WrongPass1"})
	if !errors.Is(err, tempered.ErrIncorrectPassword) {
		t.Fatalf("err = %v, want ErrIncorrectPassword", err)
	}
	if tok != "" {
		t.Fatal("elevate with a wrong password returned a token")
	}
}

func TestTokenFamiliesAreIndependent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)
	register(t, env, "c@d.com", "Password1", false)

	login, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	elevated, err := env.scheme.Elevate(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Elevate: %v", err)
	}

	// tokens never cross families: the signatures do not verify
	if _, err := env.scheme.VerifyElevatedToken(ctx, login.Token); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("regular token accepted as elevated: %v", err)
	}
	if _, err := env.scheme.VerifyToken(ctx, elevated); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("elevated token accepted as regular: %v", err)
	}

	otherElevated, err := env.scheme.Elevate(ctx, tempered.Credentials{Email: "c@d.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Elevate other: %v", err)
	}

	out, err := env.scheme.Logout(ctx, login.Token, elevated)
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !out.BannedToken || !out.BannedElevatedToken {
		t.Fatalf("logout output = %+v", out)
	}

	if _, err := env.scheme.VerifyToken(ctx, login.Token); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("regular token after logout: %v", err)
	}
	if _, err := env.scheme.VerifyElevatedToken(ctx, elevated); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("elevated token after logout: %v", err)
	}

	// the other session's elevated token is untouched
	if _, err := env.scheme.VerifyElevatedToken(ctx, otherElevated); err != nil {
		t.Fatalf("unrelated elevated token: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	login, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// a regular token is not enough
	err = env.scheme.ChangePassword(ctx, login.Token, "Replaced9")
	if !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("regular token accepted: %v", err)
	}

	elevated, err := env.scheme.Elevate(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Elevate: %v", err)
	}
	if err := env.scheme.ChangePassword(ctx, elevated, "Replaced9"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Replaced9"}); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	_, err = env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if !errors.Is(err, tempered.ErrIncorrectPassword) {
		t.Fatalf("old password still accepted: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	elevated, err := env.scheme.Elevate(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Elevate: %v", err)
	}

	if err := env.scheme.DeleteAccount(ctx, elevated); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	_, err = env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if !errors.Is(err, tempered.ErrUserNotFound) {
		t.Fatalf("login after delete: %v", err)
	}

	// the presented elevated token is banned along with the account
	if _, err := env.scheme.VerifyElevatedToken(ctx, elevated); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("elevated token after delete: %v", err)
	}

	if err := env.scheme.DeleteAccount(ctx, elevated); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRevokeToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	login, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := env.scheme.RevokeToken(ctx, login.Token); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if _, err := env.scheme.VerifyToken(ctx, login.Token); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("VerifyToken after revoke: %v", err)
	}

	if err := env.scheme.RevokeToken(ctx, "garbage"); !errors.Is(err, tempered.ErrInvalidToken) {
		t.Fatalf("revoking garbage: %v", err)
	}
	if err := env.scheme.RevokeToken(ctx, ""); !errors.Is(err, tempered.ErrMissingToken) {
		t.Fatalf("revoking empty: %v", err)
	}
}

func TestMetricsCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	register(t, env, "a@b.com", "Password1", false)

	if _, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "Password1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := env.scheme.Login(ctx, tempered.Credentials{Email: "a@b.com", Password: "WrongPass1"}); !errors.Is(err, tempered.ErrIncorrectPassword) {
		t.Fatalf("Login: %v", err)
	}

	metrics := env.scheme.Metrics()
	if got := metrics.Value(tempered.MetricLoginSuccess); got != 1 {
		t.Fatalf("login successes = %d, want 1", got)
	}
	if got := metrics.Value(tempered.MetricLoginFailure); got != 1 {
		t.Fatalf("login failures = %d, want 1", got)
	}
	if got := metrics.Value(tempered.MetricSignupSuccess); got != 1 {
		t.Fatalf("signups = %d, want 1", got)
	}
}

func TestBuilderValidation(t *testing.T) {
	hasher := testHasher(t)
	users := memstore.NewUserStore(hasher)
	bans := memstore.NewBannedTokenStore(time.Hour)
	codes := memstore.NewTwoFaCodeStore()
	mailer := email.NewMockClient()

	valid := func() tempered.Config {
		return tempered.Config{
			Token: tempered.TokenConfig{
				Secret: []byte("regular-token-test-secret"),
				TTL:    10 * time.Minute,
				Name:   "auth",
			},
			ElevatedToken: tempered.TokenConfig{
				Secret: []byte("elevated-token-test-secret"),
				TTL:    5 * time.Minute,
				Name:   "auth_elevated",
			},
		}
	}

	complete := func(cfg tempered.Config) *tempered.Builder {
		return tempered.New().
			WithConfig(cfg).
			WithUserStore(users).
			WithBannedTokenStore(bans).
			WithTwoFaCodeStore(codes).
			WithEmailClient(mailer).
			WithPasswordHasher(hasher)
	}

	if _, err := complete(valid()).Build(); err != nil {
		t.Fatalf("complete builder failed: %v", err)
	}

	shared := valid()
	shared.ElevatedToken.Secret = shared.Token.Secret
	if _, err := complete(shared).Build(); err == nil {
		t.Fatal("shared secrets accepted")
	}

	shortBan := valid()
	shortBan.BanTTL = time.Minute
	if _, err := complete(shortBan).Build(); err == nil {
		t.Fatal("ban TTL below token TTL accepted")
	}

	if _, err := tempered.New().WithConfig(valid()).Build(); err == nil {
		t.Fatal("builder without ports accepted")
	}

	reused := complete(valid())
	if _, err := reused.Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := reused.Build(); err == nil {
		t.Fatal("second Build on the same builder accepted")
	}
}
