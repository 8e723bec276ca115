package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

func (r *transactionsRepo) Get(ctx context.Context, id int64) (transactions.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE id = $1
	`, id))

	return t, wrapGet(err)
}

func (r *transactionsRepo) GetForUpdate(tx *sql.Tx, id int64) (transactions.Transaction, error) {
	t, err := scanTransaction(tx.QueryRow(`
		SELECT `+txColumns+`
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`, id))

	return t, wrapGet(err)
}

func (r *transactionsRepo) GetByExternalRefForUpdate(tx *sql.Tx, ref string) (transactions.Transaction, error) {
	t, err := scanTransaction(tx.QueryRow(`
		SELECT `+txColumns+`
		FROM transactions
		WHERE external_ref = $1
		FOR UPDATE
	`, ref))

	return t, wrapGet(err)
}

func wrapGet(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return transactions.ErrTransactionNotFound
	default:
		return fmt.Errorf("get transaction: %w", err)
	}
}
