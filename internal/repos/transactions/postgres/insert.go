package transactions

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

func (r *transactionsRepo) Insert(tx *sql.Tx, t *transactions.Transaction) error {
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}

	err = tx.QueryRow(`
		INSERT INTO transactions (
			session_id, type, amount, balance_after, status,
			payment_method, external_ref, game_session_id, description, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		t.SessionID, string(t.Type), int64(t.Amount), nullAmount(t.BalanceAfter), string(t.Status),
		nullString(t.PaymentMethod), nullString(t.ExternalRef), nullID(t.GameSessionID),
		t.Description, metadata,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return transactions.ErrDuplicateTransaction
		}

		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}
