package sql

import (
	"context"
	"database/sql"
	"fmt"
)

// dbExecutor is an interface that represents either *sql.DB or *sql.Tx.
type dbExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn carries the pool and, inside a transaction, the active tx.
type conn struct {
	db  *sql.DB
	txn *sql.Tx
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (c conn) getExecutor() dbExecutor {
	if c.txn != nil {
		return c.txn
	}
	return c.db
}

// withinTransaction runs fn with a conn bound to a new transaction and commits when fn succeeds.
func withinTransaction(ctx context.Context, db *sql.DB, fn func(c conn) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(conn{db: db, txn: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// prepare prepares query on the active executor.
func (c conn) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	stmt, err := c.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	return stmt, nil
}
