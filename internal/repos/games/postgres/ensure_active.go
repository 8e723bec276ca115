package games

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos/games"
)

// EnsureActive is an explicit upsert against the one-active-per-game partial
// index followed by a locking read. Callers already hold the session row
// lock, so concurrent first bets cannot race past the insert either way.
func (r *gamesRepo) EnsureActive(tx *sql.Tx, sessionID uuid.UUID, game outcome.Game) (games.GameSession, error) {
	_, err := tx.Exec(`
		INSERT INTO game_sessions (session_id, game_type, initial_balance, current_balance)
		SELECT id, $2, balance, balance
		FROM sessions
		WHERE id = $1
		ON CONFLICT (session_id, game_type) WHERE status = 'active' DO NOTHING
	`, sessionID, string(game))
	if err != nil {
		return games.GameSession{}, fmt.Errorf("upsert active game session: %w", err)
	}

	g, err := scanGame(tx.QueryRow(`
		SELECT `+gameColumns+`
		FROM game_sessions
		WHERE session_id = $1
		  AND game_type = $2
		  AND status = 'active'
		FOR UPDATE
	`, sessionID, string(game)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return games.GameSession{}, games.ErrGameSessionNotFound
		}

		return games.GameSession{}, fmt.Errorf("lock active game session: %w", err)
	}

	return g, nil
}
