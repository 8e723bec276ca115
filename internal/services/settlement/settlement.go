// Package settlement turns a wager into a payout and records it. One wager
// is one database transaction: the session balance, its bet/win ledger
// entries, the round row and the game session aggregates commit together
// or not at all.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos/games"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

var (
	ErrSessionNotFound   = sessions.ErrSessionNotFound
	ErrInsufficientFunds = sessions.ErrInsufficientFunds
	ErrNegativeBalance   = sessions.ErrNegativeBalance

	ErrInvalidStake    = errors.New("stake must be positive")
	ErrBelowMinimumBet = errors.New("stake below minimum bet")
	ErrPersistence     = errors.New("persistence failure")

	ErrGameSessionNotFound = games.ErrGameSessionNotFound
	ErrGameSessionClosed   = games.ErrGameSessionClosed
)

// domainErrors pass through unchanged; anything else is a persistence failure.
var domainErrors = []error{
	ErrSessionNotFound,
	ErrInsufficientFunds,
	ErrNegativeBalance,
	ErrInvalidStake,
	ErrBelowMinimumBet,
	ErrGameSessionNotFound,
	ErrGameSessionClosed,
}

func classify(err error) error {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}

	return errors.Join(ErrPersistence, err)
}

// Config is what settlement reads from the configuration provider.
type Config interface {
	MinBet(ctx context.Context, game outcome.Game) (money.Amount, error)
	HouseEdgeTable(ctx context.Context, base outcome.Table) (outcome.Table, error)
}

type Service struct {
	db           *sql.DB
	sessions     sessions.Sessions
	transactions transactions.Transactions
	games        games.Games
	config       Config
	engine       *outcome.Engine
	now          func() time.Time
}

func New(
	db *sql.DB,
	s sessions.Sessions,
	t transactions.Transactions,
	g games.Games,
	cfg Config,
	engine *outcome.Engine,
) *Service {
	return &Service{
		db:           db,
		sessions:     s,
		transactions: t,
		games:        g,
		config:       cfg,
		engine:       engine,
		now:          time.Now,
	}
}

// Wager is one bet placed by a session.
type Wager struct {
	SessionID uuid.UUID
	Game      outcome.Game
	Stake     money.Amount
	Params    outcome.BetParams
}

// Outcome is a settled wager.
type Outcome struct {
	Payout        money.Amount    `json:"payout"`
	NewBalance    money.Amount    `json:"new_balance"`
	Detail        outcome.Detail  `json:"outcome_detail"`
	RoundID       int64           `json:"round_id"`
	RoundNumber   int             `json:"round_number"`
	GameSessionID int64           `json:"game_session_id"`
	HouseEdge     decimal.Decimal `json:"house_edge"`
	Won           bool            `json:"won"`
}
