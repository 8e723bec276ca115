package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/repos/games"
)

func (r *gamesRepo) Close(tx *sql.Tx, sessionID uuid.UUID, id int64, status games.Status) (games.GameSession, error) {
	g, err := scanGame(tx.QueryRow(`
		UPDATE game_sessions
		SET status = $3,
		    ended_at = now(),
		    duration_seconds = EXTRACT(EPOCH FROM now() - started_at)::int
		WHERE id = $1
		  AND session_id = $2
		  AND status = 'active'
		RETURNING `+gameColumns,
		id, sessionID, string(status)))
	if err == nil {
		return g, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return games.GameSession{}, fmt.Errorf("close game session: %w", err)
	}

	var exists bool

	err = tx.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM game_sessions WHERE id = $1 AND session_id = $2)
	`, id, sessionID).Scan(&exists)
	if err != nil {
		return games.GameSession{}, fmt.Errorf("check game session: %w", err)
	}

	if exists {
		return games.GameSession{}, games.ErrGameSessionClosed
	}

	return games.GameSession{}, games.ErrGameSessionNotFound
}

func (r *gamesRepo) AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE game_sessions
		SET status = 'abandoned',
		    ended_at = now(),
		    duration_seconds = EXTRACT(EPOCH FROM now() - started_at)::int
		WHERE status = 'active'
		  AND COALESCE(last_round_at, started_at) < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("abandon idle game sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}
