package sessions

import (
	"database/sql"

	"github.com/fastprodman/anoncasino/internal/repos/sessions"
)

var _ sessions.Sessions = (*sessionsRepo)(nil)

type sessionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *sessionsRepo {
	return &sessionsRepo{db: db}
}

const sessionColumns = `id, balance, is_active, created_at, last_activity`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (sessions.Session, error) {
	var s sessions.Session

	err := row.Scan(&s.ID, &s.Balance, &s.IsActive, &s.CreatedAt, &s.LastActivity)

	return s, err
}
