package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/money"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExists     = errors.New("session already exists")
	ErrNegativeBalance   = errors.New("balance would become negative")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Session is an anonymous player context identified by a random token.
type Session struct {
	ID           uuid.UUID    `json:"anon_id"`
	Balance      money.Amount `json:"balance"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	LastActivity time.Time    `json:"last_activity"`
}

type Sessions interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Touch(ctx context.Context, id uuid.UUID) error
	DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error)

	// LockForUpdate reads the session and holds its row lock until tx ends.
	// Every balance mutation of a session happens under this lock.
	LockForUpdate(tx *sql.Tx, id uuid.UUID) (Session, error)
	// ApplyDelta adds delta to the balance unless the result would drop
	// below minBalance, and returns the new balance.
	ApplyDelta(tx *sql.Tx, id uuid.UUID, delta, minBalance money.Amount) (money.Amount, error)
}
