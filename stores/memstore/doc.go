// Package memstore provides in-memory implementations of the storage
// ports: a user table, a banned-token set with expiry, and a pending
// two-factor challenge table. All stores are safe for concurrent use.
//
// Nothing is persisted. These backends are intended for tests, examples,
// and single-process deployments that can tolerate losing state on
// restart; production setups should prefer the redisstore and pgstore
// packages.
package memstore
