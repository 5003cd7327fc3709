// Package password implements the Argon2id hashing engine behind the
// engine's credential checks. Hashes are stored in PHC string format
// with the cost parameters embedded, so verification always replays the
// parameters the hash was created with.
//
// Hashing and verification are CPU-bound; both are funneled through a
// bounded concurrency gate so a burst of logins cannot saturate every
// core. Callers block until their slot completes; abandoned requests do
// not cancel in-flight derivations.
package password
