package sessions

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/infra/pgtestutil"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
)

func seedSession(t *testing.T, db *sql.DB, balance money.Amount) uuid.UUID {
	t.Helper()

	id := uuid.New()

	_, err := db.Exec(`INSERT INTO sessions (id, balance) VALUES ($1, $2)`, id, int64(balance))
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	return id
}

func TestSessions_ApplyDelta_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start       money.Amount
		delta       money.Amount
		minBalance  money.Amount
		missing     bool
		wantBalance money.Amount
		wantErr     error
	}{
		{name: "credit", start: 1000, delta: 973, wantBalance: 1973},
		{name: "debit_to_zero", start: 300, delta: -300, wantBalance: 0},
		{name: "debit_below_zero", start: 200, delta: -300, wantBalance: 200, wantErr: sessions.ErrNegativeBalance},
		{name: "custom_floor", start: 1000, delta: -600, minBalance: 500, wantBalance: 1000, wantErr: sessions.ErrNegativeBalance},
		{name: "missing_session", missing: true, delta: 100, wantErr: sessions.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			repo := New(db)

			id := uuid.New()
			if !tt.missing {
				id = seedSession(t, db, tt.start)
			}

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			got, err := repo.ApplyDelta(tx, id, tt.delta, tt.minBalance)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("apply delta: %v", err)
				}

				if got != tt.wantBalance {
					t.Fatalf("returned balance: want %d, got %d", tt.wantBalance, got)
				}

				if err := tx.Commit(); err != nil {
					t.Fatalf("commit: %v", err)
				}
			}

			if tt.missing {
				return
			}

			s, err := repo.Get(ctx, id)
			if err != nil {
				t.Fatalf("get: %v", err)
			}

			if s.Balance != tt.wantBalance {
				t.Fatalf("stored balance: want %d, got %d", tt.wantBalance, s.Balance)
			}
		})
	}
}

// Two writers lock the same session and each try to take 70 of 100;
// the row lock serialises them so exactly one debit lands.
func TestSessions_LockForUpdate_SerialisesWriters(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	id := seedSession(t, db, 10000)

	var (
		wg                    sync.WaitGroup
		mu                    sync.Mutex
		success, insufficient int
	)

	worker := func() {
		defer wg.Done()

		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
		defer cancel()

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Errorf("begin: %v", err)
			return
		}
		defer func() { _ = tx.Rollback() }()

		s, err := repo.LockForUpdate(tx, id)
		if err != nil {
			t.Errorf("lock: %v", err)
			return
		}

		// hold the lock long enough for the other worker to queue behind it
		time.Sleep(50 * time.Millisecond)

		if s.Balance < 7000 {
			mu.Lock()
			insufficient++
			mu.Unlock()

			return
		}

		_, err = repo.ApplyDelta(tx, id, -7000, 0)
		if err != nil {
			t.Errorf("apply delta: %v", err)
			return
		}

		if err := tx.Commit(); err != nil {
			t.Errorf("commit: %v", err)
			return
		}

		mu.Lock()
		success++
		mu.Unlock()
	}

	wg.Add(2)

	go worker()
	go worker()

	wg.Wait()

	if success != 1 || insufficient != 1 {
		t.Fatalf("want 1 success and 1 insufficient, got %d and %d", success, insufficient)
	}

	s, err := repo.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if s.Balance != 3000 {
		t.Fatalf("final balance: want 3000, got %d", s.Balance)
	}
}

func TestSessions_LockForUpdate_Missing(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = New(db).LockForUpdate(tx, uuid.New())
	if !errors.Is(err, sessions.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
