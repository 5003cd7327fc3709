package tempered

import (
	"errors"

	"github.com/aleanon/Tempered/domain"
	"github.com/aleanon/Tempered/token"
)

// Builder assembles a JWTScheme from configuration and storage ports.
// A Builder is single use; Build fails on the second call.
type Builder struct {
	config Config

	users  UserStore
	bans   BannedTokenStore
	codes  TwoFaCodeStore
	email  EmailClient
	hasher domain.PasswordHasher

	auditSink AuditSink

	built bool
}

func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

func (b *Builder) WithBannedTokenStore(store BannedTokenStore) *Builder {
	b.bans = store
	return b
}

func (b *Builder) WithTwoFaCodeStore(store TwoFaCodeStore) *Builder {
	b.codes = store
	return b
}

func (b *Builder) WithEmailClient(client EmailClient) *Builder {
	b.email = client
	return b
}

func (b *Builder) WithPasswordHasher(hasher domain.PasswordHasher) *Builder {
	b.hasher = hasher
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithAuditEnabled(enabled bool) *Builder {
	b.config.Audit.Enabled = enabled
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

func (b *Builder) Build() (*JWTScheme, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.bans == nil {
		return nil, errors.New("banned token store required")
	}
	if b.codes == nil {
		return nil, errors.New("two-factor code store required")
	}
	if b.email == nil {
		return nil, errors.New("email client required")
	}
	if b.hasher == nil {
		return nil, errors.New("password hasher required")
	}

	codec, err := token.NewCodec(token.Config{
		Secret: cfg.Token.Secret,
		TTL:    cfg.Token.TTL,
		Name:   cfg.Token.Name,
	})
	if err != nil {
		return nil, err
	}

	elevatedCodec, err := token.NewCodec(token.Config{
		Secret: cfg.ElevatedToken.Secret,
		TTL:    cfg.ElevatedToken.TTL,
		Name:   cfg.ElevatedToken.Name,
	})
	if err != nil {
		return nil, err
	}

	scheme := &JWTScheme{
		config: cfg,
		users:  b.users,
		bans:   b.bans,
		codes:  b.codes,
		email:  b.email,
		hasher: b.hasher,

		codec:             codec,
		elevatedCodec:     elevatedCodec,
		validator:         token.NewValidator(codec, b.bans),
		elevatedValidator: token.NewValidator(elevatedCodec, b.bans),

		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return scheme, nil
}
