// Package redisstore implements the banned-token set and the pending
// two-factor challenge table on Redis.
//
// Keys are prefixed "banned_token:" and "two_fa_code:" and carry TTLs,
// so revocation entries and stale challenges age out without a
// sweeper. Redis handles per-key linearizability, which is exactly the
// guarantee the ports ask for.
package redisstore
