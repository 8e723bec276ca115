package sessions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/repos/sessions"
)

func (r *sessionsRepo) LockForUpdate(tx *sql.Tx, id uuid.UUID) (sessions.Session, error) {
	s, err := scanSession(tx.QueryRow(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrSessionNotFound
		}

		return sessions.Session{}, fmt.Errorf("lock session: %w", err)
	}

	return s, nil
}
