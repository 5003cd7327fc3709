package tempered

import (
	"bytes"
	"errors"
	"time"
)

// TokenConfig is one token family: signing secret, lifetime, and the
// identifying name the transport frames it under (cookie or header
// name).
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Name   string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the emitting
	// operation when the buffer is full.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config is the full engine configuration. Construct it once at process
// start and hand it to the Builder; the engine never reads global
// state.
type Config struct {
	Token         TokenConfig
	ElevatedToken TokenConfig

	// BanTTL is how long a revocation entry is retained. Zero means
	// "derive from the longest token TTL". A BanTTL shorter than a
	// token's lifetime would let a banned token come back to life
	// before it expires, so Validate rejects that.
	BanTTL time.Duration

	Audit   AuditConfig
	Metrics MetricsConfig
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:  10 * time.Minute,
			Name: "auth",
		},
		ElevatedToken: TokenConfig{
			TTL:  5 * time.Minute,
			Name: "auth_elevated",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate checks the configuration for startup-fatal mistakes. It
// normalizes a zero BanTTL to the longest token TTL.
func (c *Config) Validate() error {
	if len(c.Token.Secret) == 0 {
		return errors.New("token secret required")
	}
	if len(c.ElevatedToken.Secret) == 0 {
		return errors.New("elevated token secret required")
	}
	if bytes.Equal(c.Token.Secret, c.ElevatedToken.Secret) {
		return errors.New("token and elevated token must use distinct secrets")
	}
	if c.Token.TTL <= 0 || c.ElevatedToken.TTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.Name == "" || c.ElevatedToken.Name == "" {
		return errors.New("token names required")
	}
	if c.Token.Name == c.ElevatedToken.Name {
		return errors.New("token and elevated token must use distinct names")
	}

	longest := c.Token.TTL
	if c.ElevatedToken.TTL > longest {
		longest = c.ElevatedToken.TTL
	}
	if c.BanTTL == 0 {
		c.BanTTL = longest
	}
	if c.BanTTL < longest {
		return errors.New("ban TTL must cover the longest token TTL")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.ElevatedToken.Secret = cloneBytes(cfg.ElevatedToken.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
