package games

import (
	"database/sql"
	"time"

	"github.com/fastprodman/anoncasino/internal/repos/games"
)

var _ games.Games = (*gamesRepo)(nil)

type gamesRepo struct{ db *sql.DB }

func New(db *sql.DB) *gamesRepo {
	return &gamesRepo{db: db}
}

const gameColumns = `id, session_id, game_type, status, initial_balance, current_balance,
	total_staked, total_won, rounds_played, rounds_won, current_streak, longest_streak,
	biggest_win, started_at, last_round_at, ended_at, duration_seconds`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (games.GameSession, error) {
	var (
		g                games.GameSession
		lastRound, ended sql.NullTime
		duration         sql.NullInt32
	)

	err := row.Scan(
		&g.ID, &g.SessionID, &g.Game, &g.Status, &g.InitialBalance, &g.CurrentBalance,
		&g.TotalStaked, &g.TotalWon, &g.RoundsPlayed, &g.RoundsWon, &g.CurrentStreak, &g.LongestStreak,
		&g.BiggestWin, &g.StartedAt, &lastRound, &ended, &duration,
	)
	if err != nil {
		return games.GameSession{}, err
	}

	g.LastRoundAt = nullTime(lastRound)
	g.EndedAt = nullTime(ended)

	if duration.Valid {
		d := int(duration.Int32)
		g.DurationSeconds = &d
	}

	return g, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time

	return &v
}
