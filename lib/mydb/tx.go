package mydb

import (
	"context"
	"database/sql"
	"fmt"
)

type ctxTxKey struct{}

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a transaction in the context for downstream stores.
func WithTx(c context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return c
	}
	return context.WithValue(c, ctxTxKey{}, tx)
}

// TxFrom extracts a transaction from the context when present.
func TxFrom(c context.Context) (*sql.Tx, bool) {
	tx, ok := c.Value(ctxTxKey{}).(*sql.Tx)
	return tx, ok
}

// ExecutorFrom returns the transaction in c, or db when c carries none.
func ExecutorFrom(c context.Context, db *sql.DB) Executor {
	if tx, ok := TxFrom(c); ok {
		return tx
	}
	return db
}

// RunInTransaction runs f inside a transaction, joining an enclosing one when c already carries it.
func RunInTransaction(c context.Context, db *sql.DB, f func(c context.Context) error) error {
	if _, ok := TxFrom(c); ok {
		return f(c)
	}

	tx, err := db.BeginTx(c, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = f(WithTx(c, tx))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
