package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrDeliveredClasses reports a delete blocked by classes already delivered.
var ErrDeliveredClasses = errors.New("delivered classes reference the row")

// runner picks the caller's transaction when given, otherwise the pool.
func runner(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// exists runs a SELECT 1 ... LIMIT 1 style query.
func exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var one int
	if err := sqlx.GetContext(ctx, q, &one, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// affectedOne converts a zero-row write into sql.ErrNoRows.
func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// anyDelivered locks the class rows matched by query and reports whether one is delivered.
func anyDelivered(ctx context.Context, tx *sqlx.Tx, query string, arg interface{}) (bool, error) {
	var flags []bool
	if err := tx.SelectContext(ctx, &flags, query, arg); err != nil {
		return false, err
	}
	for _, delivered := range flags {
		if delivered {
			return true, nil
		}
	}
	return false, nil
}

// deleteUnlessDelivered removes a row owning classes inside one transaction. Delivered
// classes block the delete; undelivered ones are removed with it.
func deleteUnlessDelivered(ctx context.Context, db *sqlx.DB, op, lockQuery, cleanupQuery, deleteQuery string, key interface{}) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s begin: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	delivered, err := anyDelivered(ctx, tx, lockQuery, key)
	if err != nil {
		return fmt.Errorf("%s lock classes: %w", op, err)
	}
	if delivered {
		return ErrDeliveredClasses
	}
	if cleanupQuery != "" {
		if _, err := tx.ExecContext(ctx, cleanupQuery, key); err != nil {
			return fmt.Errorf("%s classes: %w", op, err)
		}
	}
	res, err := tx.ExecContext(ctx, deleteQuery, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affectedOne(res, op); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s commit: %w", op, err)
	}
	return nil
}
