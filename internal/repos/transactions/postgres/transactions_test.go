package transactions

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/anoncasino/internal/infra/pgtestutil"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
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

func insertCommitted(t *testing.T, db *sql.DB, repo *transactionsRepo, tr *transactions.Transaction) {
	t.Helper()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = repo.Insert(tx, tr)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("insert: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestTransactions_Insert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seed    func(t *testing.T, db *sql.DB) uuid.UUID
		ref     string
		wantErr error
	}{
		{
			name:    "ok_insert",
			seed:    func(t *testing.T, db *sql.DB) uuid.UUID { return seedSession(t, db, 100) },
			ref:     "ch_123",
			wantErr: nil,
		},
		{
			name: "duplicate_external_ref",
			seed: func(t *testing.T, db *sql.DB) uuid.UUID {
				id := seedSession(t, db, 100)

				_, err := db.Exec(`
					INSERT INTO transactions (session_id, type, amount, status, external_ref)
					VALUES ($1, 'deposit', 100, 'pending', 'ch_dup')
				`, id)
				if err != nil {
					t.Fatalf("seed tx: %v", err)
				}

				return id
			},
			ref:     "ch_dup",
			wantErr: transactions.ErrDuplicateTransaction,
		},
		{
			name:    "session_not_exist_fk_violation",
			seed:    func(*testing.T, *sql.DB) uuid.UUID { return uuid.New() },
			ref:     "ch_fk",
			wantErr: &pgconn.PgError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			repo := New(db)
			sessionID := tt.seed(t, db)

			tx, err := db.BeginTx(context.Background(), nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			balance := money.Amount(200)
			tr := &transactions.Transaction{
				SessionID:     sessionID,
				Type:          transactions.TypeDeposit,
				Amount:        100,
				BalanceAfter:  &balance,
				Status:        transactions.StatusPending,
				PaymentMethod: "pix",
				ExternalRef:   tt.ref,
				Metadata:      transactions.Metadata{"source": "test"},
			}

			err = repo.Insert(tx, tr)

			switch tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				if tr.ID == 0 || tr.CreatedAt.IsZero() {
					t.Fatalf("insert did not fill id/created_at: %+v", tr)
				}
			case *pgconn.PgError:
				var pgErr *pgconn.PgError
				if !errors.As(err, &pgErr) {
					t.Fatalf("expected pg error, got %T: %v", err, err)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			}
		})
	}
}

func TestTransactions_GetAndUpdateStatus(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	sessionID := seedSession(t, db, 0)

	tr := &transactions.Transaction{
		SessionID:     sessionID,
		Type:          transactions.TypeDeposit,
		Amount:        5000,
		Status:        transactions.StatusPending,
		PaymentMethod: "pix",
		Metadata:      transactions.Metadata{"gateway_request": map[string]any{"method": "pix"}},
	}
	insertCommitted(t, db, repo, tr)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	locked, err := repo.GetForUpdate(tx, tr.ID)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}

	if locked.Status != transactions.StatusPending || locked.BalanceAfter != nil {
		t.Fatalf("unexpected locked row: %+v", locked)
	}

	balance := money.Amount(5000)

	err = repo.UpdateStatus(tx, tr.ID, transactions.StatusUpdate{
		Status:       transactions.StatusCompleted,
		ExternalRef:  "ch_42",
		BalanceAfter: &balance,
		Metadata:     transactions.Metadata{"gateway_status": "paid"},
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}

	byRef, err := repo.GetByExternalRefForUpdate(tx, "ch_42")
	if err != nil {
		t.Fatalf("get by ref: %v", err)
	}

	if byRef.ID != tr.ID {
		t.Fatalf("ref lookup returned %d, want %d", byRef.ID, tr.ID)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.Get(t.Context(), tr.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Status != transactions.StatusCompleted || got.BalanceAfter == nil || *got.BalanceAfter != 5000 {
		t.Fatalf("update not stored: %+v", got)
	}

	if got.Metadata["gateway_status"] != "paid" || got.Metadata["gateway_request"] == nil {
		t.Fatalf("metadata not merged: %v", got.Metadata)
	}

	_, err = repo.Get(t.Context(), 999_999)
	if !errors.Is(err, transactions.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactions_ListAndTotals(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	sessionID := seedSession(t, db, 0)
	other := seedSession(t, db, 0)

	rows := []transactions.Transaction{
		{Type: transactions.TypeDeposit, Amount: 10000, Status: transactions.StatusCompleted},
		{Type: transactions.TypeDeposit, Amount: 7000, Status: transactions.StatusPending},
		{Type: transactions.TypeBet, Amount: 1000, Status: transactions.StatusCompleted},
		{Type: transactions.TypeWin, Amount: 1973, Status: transactions.StatusCompleted},
		{Type: transactions.TypeWithdraw, Amount: 2000, Status: transactions.StatusPending},
		{Type: transactions.TypeWithdraw, Amount: 3000, Status: transactions.StatusFailed},
	}

	for i := range rows {
		rows[i].SessionID = sessionID
		insertCommitted(t, db, repo, &rows[i])
	}

	insertCommitted(t, db, repo, &transactions.Transaction{
		SessionID: other, Type: transactions.TypeDeposit, Amount: 999, Status: transactions.StatusCompleted,
	})

	totals, err := repo.Totals(t.Context(), sessionID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	want := transactions.Totals{Deposits: 10000, Withdrawals: 2000, Bets: 1000, Wins: 1973, Count: 6}
	if totals != want {
		t.Fatalf("totals: want %+v, got %+v", want, totals)
	}

	if totals.Expected() != 8973 {
		t.Fatalf("expected balance: want 8973, got %d", totals.Expected())
	}

	page, total, err := repo.ListBySession(t.Context(), sessionID, repos.Page{Number: 2, PerPage: 4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if total != 6 || len(page) != 2 {
		t.Fatalf("page 2: want 2 of 6, got %d of %d", len(page), total)
	}

	// newest first: page 2 holds the two oldest rows
	if page[1].ID != rows[0].ID {
		t.Fatalf("ordering: last row on page 2 should be the first insert, got id %d", page[1].ID)
	}
}
