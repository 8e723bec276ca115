// Package wallet moves money in and out of a session balance outside of
// games. Every change happens under the session row lock, the same one
// settlement takes.
package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/paymentmethods"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
	"github.com/fastprodman/anoncasino/internal/services/settings"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountOutOfRange    = errors.New("amount outside allowed limits")
	ErrMethodUnavailable   = errors.New("payment method not available")
	ErrDestinationRequired = errors.New("withdrawal destination is required")
	ErrFeeExceedsAmount    = errors.New("amount does not cover the fee")

	ErrSessionNotFound      = sessions.ErrSessionNotFound
	ErrInsufficientFunds    = sessions.ErrInsufficientFunds
	ErrDuplicateTransaction = transactions.ErrDuplicateTransaction
)

const DefaultMethod = "paypal"

// Limits is what the wallet reads from the configuration provider.
type Limits interface {
	DepositLimits(ctx context.Context) (settings.Limits, error)
	WithdrawLimits(ctx context.Context) (settings.Limits, error)
}

type Service struct {
	db           *sql.DB
	sessions     sessions.Sessions
	transactions transactions.Transactions
	methods      paymentmethods.PaymentMethods
	limits       Limits
}

func New(
	db *sql.DB,
	s sessions.Sessions,
	t transactions.Transactions,
	m paymentmethods.PaymentMethods,
	limits Limits,
) *Service {
	return &Service{db: db, sessions: s, transactions: t, methods: m, limits: limits}
}

// method resolves name (DefaultMethod when blank) and checks it can be used
// in the given direction.
func (s *Service) method(ctx context.Context, name string, withdrawal bool) (paymentmethods.Method, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultMethod
	}

	m, err := s.methods.Get(ctx, name)
	if errors.Is(err, paymentmethods.ErrMethodNotFound) {
		return paymentmethods.Method{}, fmt.Errorf("%w: %s", ErrMethodUnavailable, name)
	}

	if err != nil {
		return paymentmethods.Method{}, fmt.Errorf("get payment method: %w", err)
	}

	supported := m.SupportsDeposit
	if withdrawal {
		supported = m.SupportsWithdrawal
	}

	if !m.IsActive || !supported {
		return paymentmethods.Method{}, fmt.Errorf("%w: %s", ErrMethodUnavailable, name)
	}

	return m, nil
}

func checkRange(amount money.Amount, lo, hi *money.Amount, what string) error {
	if lo != nil && amount < *lo {
		return fmt.Errorf("%w: %s minimum is %s", ErrAmountOutOfRange, what, *lo)
	}

	if hi != nil && amount > *hi {
		return fmt.Errorf("%w: %s maximum is %s", ErrAmountOutOfRange, what, *hi)
	}

	return nil
}

// Reconciliation compares a session balance with what its ledger implies.
type Reconciliation struct {
	SessionID  uuid.UUID           `json:"anon_id"`
	Balance    money.Amount        `json:"balance"`
	Expected   money.Amount        `json:"expected_balance"`
	Drift      money.Amount        `json:"drift"`
	Consistent bool                `json:"consistent"`
	Totals     transactions.Totals `json:"totals"`
}

// Reconcile recomputes the balance from the ledger. A non-zero drift means
// the balance changed without a matching transaction.
func (s *Service) Reconcile(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("get session: %w", err)
	}

	totals, err := s.transactions.Totals(ctx, id)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("sum transactions: %w", err)
	}

	expected := totals.Expected()

	return Reconciliation{
		SessionID:  id,
		Balance:    sess.Balance,
		Expected:   expected,
		Drift:      sess.Balance - expected,
		Consistent: sess.Balance == expected,
		Totals:     totals,
	}, nil
}
