// Package domain holds the validated value objects the authentication
// engine is built on: Email, Password, User, and the two-factor challenge
// identifiers. Construction goes through parse functions that reject
// malformed input, so every value of these types is known-good by the
// time it reaches a store or a scheme.
//
// The package has no dependencies on the rest of the module and performs
// no I/O.
package domain
