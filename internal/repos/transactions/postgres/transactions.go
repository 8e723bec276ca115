package transactions

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

type transactionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *transactionsRepo {
	return &transactionsRepo{db: db}
}

const txColumns = `id, session_id, type, amount, balance_after, status,
	COALESCE(payment_method, ''), COALESCE(external_ref, ''), game_session_id,
	description, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (transactions.Transaction, error) {
	var (
		t            transactions.Transaction
		balanceAfter sql.NullInt64
		gameSession  sql.NullInt64
		metadata     []byte
	)

	err := row.Scan(
		&t.ID, &t.SessionID, &t.Type, &t.Amount, &balanceAfter, &t.Status,
		&t.PaymentMethod, &t.ExternalRef, &gameSession,
		&t.Description, &metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return transactions.Transaction{}, err
	}

	if balanceAfter.Valid {
		b := money.Amount(balanceAfter.Int64)
		t.BalanceAfter = &b
	}

	if gameSession.Valid {
		id := gameSession.Int64
		t.GameSessionID = &id
	}

	if len(metadata) > 0 {
		err = json.Unmarshal(metadata, &t.Metadata)
		if err != nil {
			return transactions.Transaction{}, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return t, nil
}

func encodeMetadata(m transactions.Metadata) ([]byte, error) {
	if m == nil {
		return []byte(`{}`), nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	return b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullAmount(a *money.Amount) sql.NullInt64 {
	if a == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(*a), Valid: true}
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *id, Valid: true}
}
