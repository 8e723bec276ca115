package games

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/repos/games"
)

func (r *gamesRepo) SaveStats(tx *sql.Tx, g *games.GameSession) error {
	res, err := tx.Exec(`
		UPDATE game_sessions
		SET current_balance = $2,
		    total_staked    = $3,
		    total_won       = $4,
		    rounds_played   = $5,
		    rounds_won      = $6,
		    current_streak  = $7,
		    longest_streak  = $8,
		    biggest_win     = $9,
		    last_round_at   = $10
		WHERE id = $1
	`,
		g.ID, int64(g.CurrentBalance), int64(g.TotalStaked), int64(g.TotalWon),
		g.RoundsPlayed, g.RoundsWon, g.CurrentStreak, g.LongestStreak,
		int64(g.BiggestWin), g.LastRoundAt,
	)
	if err != nil {
		return fmt.Errorf("save game stats: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return games.ErrGameSessionNotFound
	}

	return nil
}
