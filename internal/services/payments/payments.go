// Package payments runs deposits collected by the external gateway. A deposit
// is recorded as pending before the gateway is called, then moves to
// processing, completed or failed as the gateway reports back through the
// charge call itself, a status poll or a webhook. The balance is credited at
// most once, when the transaction first becomes completed.
package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/repos/paymentmethods"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
	"github.com/fastprodman/anoncasino/internal/services/settings"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrAmountOutOfRange = errors.New("amount outside allowed limits")
	ErrChargeRefused    = errors.New("payment refused")
	ErrChargeFailed     = errors.New("payment could not be processed")
	ErrNotGatewayCharge = errors.New("transaction is not a gateway deposit")

	ErrSessionNotFound     = sessions.ErrSessionNotFound
	ErrTransactionNotFound = transactions.ErrTransactionNotFound
)

const DefaultMethod = gateway.MethodPix

// Limits is what payments reads from the configuration provider.
type Limits interface {
	DepositLimits(ctx context.Context) (settings.Limits, error)
}

type Service struct {
	db           *sql.DB
	sessions     sessions.Sessions
	transactions transactions.Transactions
	methods      paymentmethods.PaymentMethods
	gateway      gateway.Gateway
	limits       Limits
	now          func() time.Time
}

func New(
	db *sql.DB,
	s sessions.Sessions,
	t transactions.Transactions,
	m paymentmethods.PaymentMethods,
	gw gateway.Gateway,
	limits Limits,
) *Service {
	return &Service{
		db:           db,
		sessions:     s,
		transactions: t,
		methods:      m,
		gateway:      gw,
		limits:       limits,
		now:          time.Now,
	}
}

// Methods lists the active payment methods.
func (s *Service) Methods(ctx context.Context) ([]paymentmethods.Method, error) {
	methods, err := s.methods.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}

	return methods, nil
}

// localStatus maps a gateway status onto the ledger. ok is false for
// statuses that do not move the transaction.
func localStatus(st gateway.Status) (transactions.Status, bool) {
	switch {
	case st.Settled():
		return transactions.StatusCompleted, true
	case st.Rejected():
		return transactions.StatusFailed, true
	case st == gateway.StatusWaitingPayment, st == gateway.StatusProcessing, st == gateway.StatusAuthorized:
		return transactions.StatusProcessing, true
	default:
		return "", false
	}
}

// apply moves t to the state the gateway reported, crediting the session
// when t becomes completed, and stores upd along with it. t must have been
// read FOR UPDATE in tx. Terminal transactions keep their status.
func (s *Service) apply(tx *sql.Tx, t transactions.Transaction, st gateway.Status, upd transactions.StatusUpdate) (transactions.Transaction, error) {
	upd.Status = ""

	next, ok := localStatus(st)
	if ok && next != t.Status && !t.Status.Terminal() {
		upd.Status = next
	}

	if upd.Status == transactions.StatusCompleted {
		_, err := s.sessions.LockForUpdate(tx, t.SessionID)
		if err != nil {
			return t, fmt.Errorf("lock session: %w", err)
		}

		balance, err := s.sessions.ApplyDelta(tx, t.SessionID, t.Amount, 0)
		if err != nil {
			return t, fmt.Errorf("credit deposit: %w", err)
		}

		upd.BalanceAfter = &balance
		t.BalanceAfter = &balance
	}

	err := s.transactions.UpdateStatus(tx, t.ID, upd)
	if err != nil {
		return t, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}

	if upd.ExternalRef != "" {
		t.ExternalRef = upd.ExternalRef
	}

	if upd.Status != "" {
		slog.Info("payment status changed",
			"transaction_id", t.ID, "anon_id", t.SessionID, "from", t.Status, "to", upd.Status)
		t.Status = upd.Status
	}

	return t, nil
}
