package sessions

import (
	"context"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
)

func (r *sessionsRepo) Create(ctx context.Context, s sessions.Session) (sessions.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (id, balance, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING `+sessionColumns,
		s.ID, s.Balance)

	created, err := scanSession(row)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return sessions.Session{}, sessions.ErrSessionExists
		}

		return sessions.Session{}, fmt.Errorf("insert session: %w", err)
	}

	return created, nil
}
