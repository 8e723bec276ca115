package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/repos/sessions"
)

func (r *sessionsRepo) Get(ctx context.Context, id uuid.UUID) (sessions.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrSessionNotFound
		}

		return sessions.Session{}, fmt.Errorf("get session: %w", err)
	}

	return s, nil
}

func (r *sessionsRepo) Touch(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET last_activity = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return sessions.ErrSessionNotFound
	}

	return nil
}
