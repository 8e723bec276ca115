package transactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

// Totals counts completed deposits, wins and bets, and withdrawals that
// have not failed or been cancelled, since those are debited on request.
func (r *transactionsRepo) Totals(ctx context.Context, sessionID uuid.UUID) (transactions.Totals, error) {
	var t transactions.Totals

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit' AND status = 'completed'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdraw' AND status NOT IN ('failed', 'cancelled')), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'bet' AND status = 'completed'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'win' AND status = 'completed'), 0),
			count(*)
		FROM transactions
		WHERE session_id = $1
	`, sessionID).Scan(&t.Deposits, &t.Withdrawals, &t.Bets, &t.Wins, &t.Count)
	if err != nil {
		return transactions.Totals{}, fmt.Errorf("sum transactions: %w", err)
	}

	return t, nil
}
