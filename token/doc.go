// Package token builds and checks the signed bearer tokens the engine
// issues. A token carries exactly two claims, the subject email and an
// expiry timestamp, signed with HMAC-SHA256.
//
// Encoding is deterministic: the same claims and the same secret always
// produce the same bytes. Revocation depends on this. The validator
// re-encodes the recovered claims and looks that canonical string up in
// the ban set, so bans are keyed by (claims, secret) identity rather
// than by whatever byte string the caller presented.
package token
