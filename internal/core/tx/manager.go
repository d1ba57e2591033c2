// Package tx defines transaction management contracts.
//
// Domain services depend on these interfaces so business logic stays
// free of database specifics. The PostgreSQL implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs functions inside a database transaction.
//
// The stock ledger relies on this for its all-or-nothing guarantee:
// the header, every line and every balance update commit together or
// not at all.
type Manager interface {
	// RunInTransaction executes fn within a transaction. An error from
	// fn rolls everything back; nil commits. Nested calls join the
	// transaction already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transaction support for multi-query
// reads that need a consistent snapshot.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction. Writes fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
