// Package pgstore implements the user table on PostgreSQL through
// database/sql and the pgx stdlib driver.
//
// Email is the primary key, so concurrent inserts for the same address
// are resolved by the database: one writer wins and the rest get a
// unique violation, surfaced as ErrUserAlreadyExists.
package pgstore
