package pgutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrCommit marks a failed COMMIT. The caller cannot tell whether the server
// applied the transaction.
var ErrCommit = errors.New("commit tx")

// WithTx runs fn inside a transaction.
// It commits if fn returns nil and rolls back if fn returns an error or panics.
// A panic is re-raised once the rollback has been issued.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // default isolation level
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		// a cancelled ctx has already rolled the tx back
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, err)
		}

		return fmt.Errorf("fn: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}
