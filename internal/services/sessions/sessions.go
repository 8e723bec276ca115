// Package sessions is the registry of anonymous player sessions.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos"
	"github.com/fastprodman/anoncasino/internal/repos/games"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

var (
	ErrInvalidID       = errors.New("invalid session id")
	ErrSessionNotFound = sessions.ErrSessionNotFound
)

const (
	MaxTransactionsPerPage = 100
	MaxGamesPerPage        = 50
	DefaultPerPage         = 20

	createAttempts = 3
)

type Service struct {
	sessions     sessions.Sessions
	transactions transactions.Transactions
	games        games.Games
	now          func() time.Time
}

func New(s sessions.Sessions, t transactions.Transactions, g games.Games) *Service {
	return &Service{sessions: s, transactions: t, games: g, now: time.Now}
}

// ParseID accepts the canonical 36-character UUID form only.
func ParseID(raw string) (uuid.UUID, error) {
	if len(raw) != 36 {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}

	return id, nil
}

// Generate creates a session with a fresh random token and zero balance.
func (s *Service) Generate(ctx context.Context) (sessions.Session, error) {
	for range createAttempts {
		created, err := s.sessions.Create(ctx, sessions.Session{ID: uuid.New()})
		if errors.Is(err, sessions.ErrSessionExists) {
			continue
		}

		if err != nil {
			return sessions.Session{}, fmt.Errorf("create session: %w", err)
		}

		slog.InfoContext(ctx, "session created", "anon_id", created.ID)

		return created, nil
	}

	return sessions.Session{}, fmt.Errorf("create session: %w", sessions.ErrSessionExists)
}

// Get returns the session and records activity on it.
func (s *Service) Get(ctx context.Context, rawID string) (sessions.Session, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return sessions.Session{}, err
	}

	err = s.sessions.Touch(ctx, id)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("touch session: %w", err)
	}

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("get session: %w", err)
	}

	return sess, nil
}

// GetOrCreate returns the session with id rawID, creating it empty if it does
// not exist yet. created reports which happened.
func (s *Service) GetOrCreate(ctx context.Context, rawID string) (sess sessions.Session, created bool, err error) {
	id, err := ParseID(rawID)
	if err != nil {
		return sessions.Session{}, false, err
	}

	sess, err = s.sessions.Get(ctx, id)
	if err == nil {
		return sess, false, nil
	}

	if !errors.Is(err, sessions.ErrSessionNotFound) {
		return sessions.Session{}, false, fmt.Errorf("get session: %w", err)
	}

	sess, err = s.sessions.Create(ctx, sessions.Session{ID: id})
	if errors.Is(err, sessions.ErrSessionExists) {
		// lost the race to a concurrent first contact
		sess, err = s.sessions.Get(ctx, id)
		if err != nil {
			return sessions.Session{}, false, fmt.Errorf("get session: %w", err)
		}

		return sess, false, nil
	}

	if err != nil {
		return sessions.Session{}, false, fmt.Errorf("create session: %w", err)
	}

	return sess, true, nil
}

// Summary is a session's balance next to its ledger totals.
type Summary struct {
	Session sessions.Session    `json:"session"`
	Totals  transactions.Totals `json:"totals"`
	Net     money.Amount        `json:"net_result"`
}

func (s *Service) Summary(ctx context.Context, rawID string) (Summary, error) {
	sess, err := s.Get(ctx, rawID)
	if err != nil {
		return Summary{}, err
	}

	totals, err := s.transactions.Totals(ctx, sess.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("sum transactions: %w", err)
	}

	return Summary{Session: sess, Totals: totals, Net: totals.Wins - totals.Bets}, nil
}

// PageInfo describes one page of a listing.
type PageInfo struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

func pageInfo(p repos.Page, total int) PageInfo {
	return PageInfo{Page: p.Number, PerPage: p.PerPage, Total: total, Pages: p.Pages(total)}
}

type TransactionPage struct {
	Transactions []transactions.Transaction `json:"transactions"`
	Pagination   PageInfo                   `json:"pagination"`
}

// Transactions lists the session's ledger newest first. perPage is clamped
// to [1, MaxTransactionsPerPage].
func (s *Service) Transactions(ctx context.Context, rawID string, page, perPage int) (TransactionPage, error) {
	sess, err := s.Get(ctx, rawID)
	if err != nil {
		return TransactionPage{}, err
	}

	p := repos.NewPage(page, perPage, MaxTransactionsPerPage)

	items, total, err := s.transactions.ListBySession(ctx, sess.ID, p)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}

	return TransactionPage{Transactions: items, Pagination: pageInfo(p, total)}, nil
}

type GamePage struct {
	GameSessions []games.GameSession `json:"game_sessions"`
	Pagination   PageInfo            `json:"pagination"`
}

// Games lists the session's game sessions newest first. perPage is clamped
// to [1, MaxGamesPerPage].
func (s *Service) Games(ctx context.Context, rawID string, page, perPage int) (GamePage, error) {
	sess, err := s.Get(ctx, rawID)
	if err != nil {
		return GamePage{}, err
	}

	p := repos.NewPage(page, perPage, MaxGamesPerPage)

	items, total, err := s.games.ListBySession(ctx, sess.ID, p)
	if err != nil {
		return GamePage{}, fmt.Errorf("list game sessions: %w", err)
	}

	return GamePage{GameSessions: items, Pagination: pageInfo(p, total)}, nil
}

type CleanupResult struct {
	SessionsRemoved int64 `json:"removed_count"`
	GamesAbandoned  int64 `json:"abandoned_game_sessions"`
}

// Cleanup deletes sessions idle for longer than sessionMaxIdle, together with
// everything they own, and marks game sessions without a round for
// gameMaxIdle as abandoned.
func (s *Service) Cleanup(ctx context.Context, sessionMaxIdle, gameMaxIdle time.Duration) (CleanupResult, error) {
	now := s.now()

	removed, err := s.sessions.DeleteInactive(ctx, now.Add(-sessionMaxIdle))
	if err != nil {
		return CleanupResult{}, fmt.Errorf("delete inactive sessions: %w", err)
	}

	abandoned, err := s.games.AbandonIdle(ctx, now.Add(-gameMaxIdle))
	if err != nil {
		return CleanupResult{SessionsRemoved: removed}, fmt.Errorf("abandon idle games: %w", err)
	}

	return CleanupResult{SessionsRemoved: removed, GamesAbandoned: abandoned}, nil
}

// RunSweeper calls Cleanup every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, sessionMaxIdle, gameMaxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.Cleanup(ctx, sessionMaxIdle, gameMaxIdle)
			if err != nil {
				slog.ErrorContext(ctx, "session sweep failed", "error", err)
				continue
			}

			if res.SessionsRemoved > 0 || res.GamesAbandoned > 0 {
				slog.InfoContext(ctx, "session sweep",
					"sessions_removed", res.SessionsRemoved,
					"games_abandoned", res.GamesAbandoned)
			}
		}
	}
}
