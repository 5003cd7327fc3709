// Package tempered is an authentication engine: it issues, validates,
// and revokes signed bearer tokens for a user base, with an optional
// email second factor and a separately secured elevated token for
// sensitive operations.
//
// The engine is transport-agnostic. It exposes Go contracts, not HTTP
// routes: a caller adapts it to whatever framing (cookies, headers,
// RPC) it uses. Storage is abstracted behind small ports (UserStore,
// BannedTokenStore, TwoFaCodeStore, EmailClient); ready-made backends
// live under stores/ and email/.
//
// Capabilities are composed, not monolithic. Scheme is the core
// login/logout contract; registration, two-factor verification,
// elevation, revocation, and account management are independent
// interfaces a concrete scheme may or may not satisfy. Handlers that
// need a capability accept that interface, so using an unsupported
// capability is a compile error rather than a runtime branch.
//
// Build an engine with the Builder:
//
//	scheme, err := tempered.New().
//		WithConfig(cfg).
//		WithUserStore(users).
//		WithBannedTokenStore(bans).
//		WithTwoFaCodeStore(codes).
//		WithEmailClient(mailer).
//		WithPasswordHasher(hasher).
//		Build()
package tempered
