// Package id provides entity identifiers.
//
// Identifiers are UUIDv7. The embedded timestamp keeps ledger rows and
// their B-tree indexes roughly insertion-ordered in PostgreSQL.
package id

import (
	"github.com/google/uuid"
)

// ID identifies an entity. It is an alias, so helpers here are package
// functions rather than methods.
type ID = uuid.UUID

// New generates a time-ordered identifier.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails when the random source does; fall back
		// to a random identifier rather than returning an error from
		// every constructor.
		return uuid.New()
	}
	return v7
}

// Parse converts a string to an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts a string to an ID, panicking on error.
// For fixtures and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero identifier.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether the identifier is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
