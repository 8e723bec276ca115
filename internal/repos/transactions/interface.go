package transactions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos"
)

var (
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

type Type string

const (
	TypeDeposit  Type = "deposit"
	TypeWithdraw Type = "withdraw"
	TypeBet      Type = "bet"
	TypeWin      Type = "win"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Metadata is free-form structured data stored as JSONB.
type Metadata map[string]any

// Transaction is one append-only ledger entry. Only its status, external
// reference, balance snapshot and metadata may change after insertion.
type Transaction struct {
	ID            int64         `json:"id"`
	SessionID     uuid.UUID     `json:"anon_id"`
	Type          Type          `json:"transaction_type"`
	Amount        money.Amount  `json:"amount"`
	BalanceAfter  *money.Amount `json:"balance_after"`
	Status        Status        `json:"status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	ExternalRef   string        `json:"external_transaction_id,omitempty"`
	GameSessionID *int64        `json:"game_session_id,omitempty"`
	Description   string        `json:"description"`
	Metadata      Metadata      `json:"metadata,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// StatusUpdate changes a transaction. Empty or nil fields are left alone;
// Metadata is merged into the stored object.
type StatusUpdate struct {
	Status       Status
	ExternalRef  string
	BalanceAfter *money.Amount
	Metadata     Metadata
}

// Totals sums a session's ledger the way the balance invariant counts it.
type Totals struct {
	Deposits    money.Amount `json:"total_deposits"`
	Withdrawals money.Amount `json:"total_withdrawals"`
	Bets        money.Amount `json:"total_bets"`
	Wins        money.Amount `json:"total_wins"`
	Count       int          `json:"transaction_count"`
}

// Expected is the balance the ledger implies:
// completed deposits + wins - live withdrawals - bets.
func (t Totals) Expected() money.Amount {
	return t.Deposits + t.Wins - t.Withdrawals - t.Bets
}

type Transactions interface {
	// Insert appends t and fills its ID and timestamps.
	Insert(tx *sql.Tx, t *Transaction) error
	Get(ctx context.Context, id int64) (Transaction, error)
	GetForUpdate(tx *sql.Tx, id int64) (Transaction, error)
	GetByExternalRefForUpdate(tx *sql.Tx, ref string) (Transaction, error)
	UpdateStatus(tx *sql.Tx, id int64, upd StatusUpdate) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, page repos.Page) ([]Transaction, int, error)
	Totals(ctx context.Context, sessionID uuid.UUID) (Totals, error)
}
