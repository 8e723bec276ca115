package transactions

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

func (r *transactionsRepo) UpdateStatus(tx *sql.Tx, id int64, upd transactions.StatusUpdate) error {
	metadata, err := encodeMetadata(upd.Metadata)
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
		UPDATE transactions
		SET status        = COALESCE(NULLIF($2, ''), status),
		    external_ref  = COALESCE($3, external_ref),
		    balance_after = COALESCE($4, balance_after),
		    metadata      = metadata || $5::jsonb,
		    updated_at    = now()
		WHERE id = $1
	`, id, string(upd.Status), nullString(upd.ExternalRef), nullAmount(upd.BalanceAfter), metadata)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return transactions.ErrDuplicateTransaction
		}

		return fmt.Errorf("update transaction status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return transactions.ErrTransactionNotFound
	}

	return nil
}
