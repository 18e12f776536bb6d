// Package dbx holds the small database plumbing the repositories share: the
// DBTX handle they execute against, transaction scoping, and Postgres error
// classification.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface repositories need. Both *sql.DB and *sql.Tx
// satisfy it, so a repository bound to a transaction and one bound to the
// pool are the same code.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics; a panic is
// rethrown after the rollback. fn receives the transaction as a DBTX, so
// repositories can be rebound to it without knowing they run transactionally.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
