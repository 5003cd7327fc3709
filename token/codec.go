package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aleanon/Tempered/domain"
)

var (
	// ErrBadSignature is returned when a token's signature does not
	// verify against the configured secret.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrMalformed is returned when a token is structurally invalid or
	// its claims do not decode.
	ErrMalformed = errors.New("token malformed")
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrBanned is returned by the validator when a token has been
	// revoked.
	ErrBanned = errors.New("token banned")
)

// Config is one token family: a signing secret, a lifetime, and an
// identifying name for transport framing (cookie or header name). The
// regular and elevated tokens each get an independent Config.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Name   string
}

// Claims is the token payload: subject identity and expiry. At issuance
// the expiry is always in the future.
type Claims struct {
	Subject   domain.Email
	ExpiresAt time.Time
}

// wireClaims is the serialized shape. Field order is fixed at {sub, exp}
// to match the canonical encoding; adding a claim here changes every
// token's bytes and invalidates outstanding bans.
type wireClaims struct {
	Sub string `json:"sub"`
	Exp int64  `json:"exp"`
}

func (c *wireClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

func (c *wireClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c *wireClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *wireClaims) GetIssuer() (string, error)              { return "", nil }
func (c *wireClaims) GetSubject() (string, error)             { return c.Sub, nil }
func (c *wireClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// Codec signs and parses tokens for one token family.
type Codec struct {
	config Config
}

// NewCodec validates the family configuration.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid token TTL")
	}
	if cfg.Name == "" {
		return nil, errors.New("token name required")
	}
	return &Codec{config: cfg}, nil
}

// Name returns the family's identifying name.
func (c *Codec) Name() string {
	return c.config.Name
}

// TTL returns the family's configured lifetime.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}

// IssueFor signs a fresh token for the subject, expiring TTL from now.
func (c *Codec) IssueFor(email domain.Email) (string, Claims, error) {
	claims := Claims{
		Subject:   email,
		ExpiresAt: time.Now().Add(c.config.TTL),
	}
	signed, err := c.Issue(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

// Issue signs the given claims. The encoding is deterministic: identical
// claims and secret always yield identical bytes. The validator's
// revocation check re-encodes recovered claims through this method, so
// determinism is a hard contract, not an implementation detail.
func (c *Codec) Issue(claims Claims) (string, error) {
	wire := &wireClaims{
		Sub: claims.Subject.String(),
		Exp: claims.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(c.config.Secret)
}

// Parse verifies the signature and structural validity of a token and
// returns its claims. Expiry is enforced as part of signature-format
// validation; callers must still treat the returned expiry as
// authoritative.
func (c *Codec) Parse(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	var wire wireClaims
	tok, err := parser.ParseWithClaims(tokenStr, &wire, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			return Claims{}, ErrMalformed
		}
	}
	if !tok.Valid {
		return Claims{}, ErrMalformed
	}

	subject, err := domain.ParseEmail(wire.Sub)
	if err != nil {
		return Claims{}, ErrMalformed
	}

	return Claims{
		Subject:   subject,
		ExpiresAt: time.Unix(wire.Exp, 0),
	}, nil
}
