package sessions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
)

func (r *sessionsRepo) ApplyDelta(tx *sql.Tx, id uuid.UUID, delta, minBalance money.Amount) (money.Amount, error) {
	var balance money.Amount

	err := tx.QueryRow(`
		UPDATE sessions
		SET balance = balance + $2,
		    last_activity = now()
		WHERE id = $1
		  AND balance + $2 >= $3
		RETURNING balance
	`, id, delta, minBalance).Scan(&balance)
	if err == nil {
		return balance, nil
	}

	if pgutils.IsCheckViolation(err) {
		return 0, sessions.ErrNegativeBalance
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("apply delta: %w", err)
	}

	// no row: either the guard failed or the session is gone
	var exists bool

	err = tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check session exists: %w", err)
	}

	if !exists {
		return 0, sessions.ErrSessionNotFound
	}

	return 0, sessions.ErrNegativeBalance
}
