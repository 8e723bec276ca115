package sessions

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/infra/pgtestutil"
)

func TestSessions_DeleteInactive_Cascades(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	stale := uuid.New()
	fresh := uuid.New()

	_, err := db.Exec(`
		INSERT INTO sessions (id, balance, last_activity) VALUES
			($1, 500, now() - interval '40 days'),
			($2, 500, now())
	`, stale, fresh)
	if err != nil {
		t.Fatalf("seed sessions: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO transactions (session_id, type, amount, balance_after, status)
		VALUES ($1, 'deposit', 500, 500, 'completed'), ($2, 'deposit', 500, 500, 'completed')
	`, stale, fresh)
	if err != nil {
		t.Fatalf("seed transactions: %v", err)
	}

	_, err = db.Exec(`INSERT INTO game_sessions (session_id, game_type) VALUES ($1, 'dice')`, stale)
	if err != nil {
		t.Fatalf("seed game session: %v", err)
	}

	n, err := repo.DeleteInactive(t.Context(), time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("delete inactive: %v", err)
	}

	if n != 1 {
		t.Fatalf("deleted: want 1, got %d", n)
	}

	var txCount, gameCount int

	err = db.QueryRow(`SELECT count(*) FROM transactions WHERE session_id = $1`, stale).Scan(&txCount)
	if err != nil {
		t.Fatalf("count transactions: %v", err)
	}

	err = db.QueryRow(`SELECT count(*) FROM game_sessions WHERE session_id = $1`, stale).Scan(&gameCount)
	if err != nil {
		t.Fatalf("count games: %v", err)
	}

	if txCount != 0 || gameCount != 0 {
		t.Fatalf("cascade failed: %d transactions, %d games left", txCount, gameCount)
	}

	if _, err := repo.Get(t.Context(), fresh); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
}
