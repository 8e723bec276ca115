package transactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/repos"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

func (r *transactionsRepo) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
	page repos.Page,
) ([]transactions.Transaction, int, error) {
	var total int

	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM transactions WHERE session_id = $1
	`, sessionID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, sessionID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	out := make([]transactions.Transaction, 0, page.PerPage)

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}

		out = append(out, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, total, nil
}
