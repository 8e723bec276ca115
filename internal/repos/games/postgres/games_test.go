package games

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/anoncasino/internal/infra/pgtestutil"
	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos"
	"github.com/fastprodman/anoncasino/internal/repos/games"
)

func seedSession(t *testing.T, db *sql.DB, balance int64) uuid.UUID {
	t.Helper()

	id := uuid.New()

	_, err := db.Exec(`INSERT INTO sessions (id, balance) VALUES ($1, $2)`, id, balance)
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	return id
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	fn(tx)

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestGames_EnsureActive_ReusesActive(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	sessionID := seedSession(t, db, 10000)

	var first, second games.GameSession

	inTx(t, db, func(tx *sql.Tx) {
		var err error

		first, err = repo.EnsureActive(tx, sessionID, outcome.Roulette)
		if err != nil {
			t.Fatalf("ensure active: %v", err)
		}
	})

	inTx(t, db, func(tx *sql.Tx) {
		var err error

		second, err = repo.EnsureActive(tx, sessionID, outcome.Roulette)
		if err != nil {
			t.Fatalf("ensure active again: %v", err)
		}
	})

	if first.ID != second.ID {
		t.Fatalf("expected the same active game session, got %d and %d", first.ID, second.ID)
	}

	if first.Status != games.StatusActive || first.InitialBalance != 10000 {
		t.Fatalf("unexpected new game session: %+v", first)
	}

	var dice games.GameSession

	inTx(t, db, func(tx *sql.Tx) {
		var err error

		dice, err = repo.EnsureActive(tx, sessionID, outcome.Dice)
		if err != nil {
			t.Fatalf("ensure dice: %v", err)
		}
	})

	if dice.ID == first.ID {
		t.Fatal("different games must get different game sessions")
	}
}

func TestGames_EnsureActive_MissingSession(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = New(db).EnsureActive(tx, uuid.New(), outcome.Slots)
	if !errors.Is(err, games.ErrGameSessionNotFound) {
		t.Fatalf("expected ErrGameSessionNotFound, got %v", err)
	}
}

func TestGames_RoundsStatsAndClose(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	sessionID := seedSession(t, db, 10000)

	var g games.GameSession

	inTx(t, db, func(tx *sql.Tx) {
		var err error

		g, err = repo.EnsureActive(tx, sessionID, outcome.Roulette)
		if err != nil {
			t.Fatalf("ensure active: %v", err)
		}

		round := &games.Round{
			GameSessionID: g.ID,
			RoundNumber:   1,
			Stake:         1000,
			Payout:        1973,
			HouseEdge:     decimal.RequireFromString("0.027"),
			BetType:       "color:red",
			BetParams:     outcome.BetParams{Type: "color", Value: "red"},
			Result:        outcome.Detail{"winning_number": 1, "won": true},
		}

		if err := repo.NextRound(tx, round); err != nil {
			t.Fatalf("next round: %v", err)
		}

		if round.ID == 0 {
			t.Fatal("round id not filled")
		}

		now := time.Now()
		g.RoundsPlayed, g.RoundsWon = 1, 1
		g.CurrentStreak, g.LongestStreak = 1, 1
		g.TotalStaked, g.TotalWon, g.BiggestWin = 1000, 1973, 1973
		g.CurrentBalance = 10973
		g.LastRoundAt = &now

		if err := repo.SaveStats(tx, &g); err != nil {
			t.Fatalf("save stats: %v", err)
		}
	})

	dupTx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	err = repo.NextRound(dupTx, &games.Round{GameSessionID: g.ID, RoundNumber: 1, Stake: 1, HouseEdge: decimal.Zero})
	_ = dupTx.Rollback()

	if !errors.Is(err, games.ErrDuplicateRound) {
		t.Fatalf("expected ErrDuplicateRound, got %v", err)
	}

	list, total, err := repo.ListBySession(t.Context(), sessionID, repos.Page{Number: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if total != 1 || len(list) != 1 {
		t.Fatalf("want one game session, got %d (total %d)", len(list), total)
	}

	stored := list[0]
	if stored.RoundsPlayed != 1 || stored.TotalWon != 1973 || stored.NetResult() != 973 || stored.LastRoundAt == nil {
		t.Fatalf("stats not stored: %+v", stored)
	}

	inTx(t, db, func(tx *sql.Tx) {
		closed, err := repo.Close(tx, sessionID, g.ID, games.StatusCompleted)
		if err != nil {
			t.Fatalf("close: %v", err)
		}

		if closed.Status != games.StatusCompleted || closed.EndedAt == nil || closed.DurationSeconds == nil {
			t.Fatalf("close did not stamp end: %+v", closed)
		}

		_, err = repo.Close(tx, sessionID, g.ID, games.StatusCompleted)
		if !errors.Is(err, games.ErrGameSessionClosed) {
			t.Fatalf("expected ErrGameSessionClosed, got %v", err)
		}

		_, err = repo.Close(tx, uuid.New(), g.ID, games.StatusCompleted)
		if !errors.Is(err, games.ErrGameSessionNotFound) {
			t.Fatalf("foreign session: expected ErrGameSessionNotFound, got %v", err)
		}
	})

	// the next bet opens a fresh game session
	inTx(t, db, func(tx *sql.Tx) {
		next, err := repo.EnsureActive(tx, sessionID, outcome.Roulette)
		if err != nil {
			t.Fatalf("ensure after close: %v", err)
		}

		if next.ID == g.ID {
			t.Fatal("closed game session was reused")
		}
	})
}

func TestGames_AbandonIdle(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	sessionID := seedSession(t, db, 0)

	_, err := db.Exec(`
		INSERT INTO game_sessions (session_id, game_type, started_at) VALUES
			($1, 'dice', now() - interval '5 hours'),
			($1, 'slots', now())
	`, sessionID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := repo.AbandonIdle(t.Context(), time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("abandon idle: %v", err)
	}

	if n != 1 {
		t.Fatalf("abandoned: want 1, got %d", n)
	}

	var status string

	err = db.QueryRow(`SELECT status FROM game_sessions WHERE session_id = $1 AND game_type = 'dice'`, sessionID).Scan(&status)
	if err != nil {
		t.Fatalf("read status: %v", err)
	}

	if status != string(games.StatusAbandoned) {
		t.Fatalf("status: want abandoned, got %s", status)
	}
}
