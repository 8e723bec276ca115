package games

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos"
)

var (
	ErrGameSessionNotFound = errors.New("game session not found")
	ErrGameSessionClosed   = errors.New("game session is not active")
	ErrDuplicateRound      = errors.New("round number already used")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// GameSession groups consecutive rounds of one game played by one session.
type GameSession struct {
	ID              int64        `json:"id"`
	SessionID       uuid.UUID    `json:"anon_id"`
	Game            outcome.Game `json:"game_type"`
	Status          Status       `json:"status"`
	InitialBalance  money.Amount `json:"initial_balance"`
	CurrentBalance  money.Amount `json:"current_balance"`
	TotalStaked     money.Amount `json:"total_bet"`
	TotalWon        money.Amount `json:"total_won"`
	RoundsPlayed    int          `json:"rounds_played"`
	RoundsWon       int          `json:"rounds_won"`
	CurrentStreak   int          `json:"current_streak"`
	LongestStreak   int          `json:"longest_streak"`
	BiggestWin      money.Amount `json:"biggest_win"`
	StartedAt       time.Time    `json:"start_time"`
	LastRoundAt     *time.Time   `json:"last_round_at,omitempty"`
	EndedAt         *time.Time   `json:"end_time,omitempty"`
	DurationSeconds *int         `json:"duration_seconds,omitempty"`
}

// NetResult is what the player is up or down in this game session.
func (g GameSession) NetResult() money.Amount {
	return g.TotalWon - g.TotalStaked
}

// Round is one resolved wager. Rounds are never updated.
type Round struct {
	ID            int64             `json:"id"`
	GameSessionID int64             `json:"game_session_id"`
	RoundNumber   int               `json:"round_number"`
	Stake         money.Amount      `json:"bet_amount"`
	Payout        money.Amount      `json:"payout_amount"`
	HouseEdge     decimal.Decimal   `json:"house_edge"`
	BetType       string            `json:"bet_type"`
	BetParams     outcome.BetParams `json:"bet_params"`
	Result        outcome.Detail    `json:"result"`
	CreatedAt     time.Time         `json:"created_at"`
}

type Games interface {
	// EnsureActive returns the session's active game session for game,
	// creating it if needed, and keeps its row locked until tx ends.
	EnsureActive(tx *sql.Tx, sessionID uuid.UUID, game outcome.Game) (GameSession, error)
	// NextRound inserts r and fills its ID and CreatedAt.
	NextRound(tx *sql.Tx, r *Round) error
	SaveStats(tx *sql.Tx, g *GameSession) error
	// Close ends an active game session owned by sessionID.
	Close(tx *sql.Tx, sessionID uuid.UUID, id int64, status Status) (GameSession, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, page repos.Page) ([]GameSession, int, error)
	// AbandonIdle marks active game sessions without a round since cutoff abandoned.
	AbandonIdle(ctx context.Context, cutoff time.Time) (int64, error)
}
