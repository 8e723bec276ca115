package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/repos/games"
	"github.com/fastprodman/anoncasino/internal/repos/paymentmethods"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	settingsrepo "github.com/fastprodman/anoncasino/internal/repos/settings"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
	"github.com/fastprodman/anoncasino/internal/services/payments"
	sessionsvc "github.com/fastprodman/anoncasino/internal/services/sessions"
	"github.com/fastprodman/anoncasino/internal/services/settings"
	"github.com/fastprodman/anoncasino/internal/services/settlement"
	"github.com/fastprodman/anoncasino/internal/services/wallet"
)

var (
	_ SessionService    = (*mockSessions)(nil)
	_ SettlementService = (*mockSettlement)(nil)
	_ WalletService     = (*mockWallet)(nil)
	_ PaymentService    = (*mockPayments)(nil)
	_ ConfigService     = (*mockConfig)(nil)
	_ Pinger            = (*mockPinger)(nil)
)

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Generate(ctx context.Context) (sessions.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(sessions.Session), args.Error(1)
}

func (m *mockSessions) Get(ctx context.Context, rawID string) (sessions.Session, error) {
	args := m.Called(ctx, rawID)
	return args.Get(0).(sessions.Session), args.Error(1)
}

func (m *mockSessions) Summary(ctx context.Context, rawID string) (sessionsvc.Summary, error) {
	args := m.Called(ctx, rawID)
	return args.Get(0).(sessionsvc.Summary), args.Error(1)
}

func (m *mockSessions) Transactions(ctx context.Context, rawID string, page, perPage int) (sessionsvc.TransactionPage, error) {
	args := m.Called(ctx, rawID, page, perPage)
	return args.Get(0).(sessionsvc.TransactionPage), args.Error(1)
}

func (m *mockSessions) Games(ctx context.Context, rawID string, page, perPage int) (sessionsvc.GamePage, error) {
	args := m.Called(ctx, rawID, page, perPage)
	return args.Get(0).(sessionsvc.GamePage), args.Error(1)
}

func (m *mockSessions) Cleanup(ctx context.Context, sessionMaxIdle, gameMaxIdle time.Duration) (sessionsvc.CleanupResult, error) {
	args := m.Called(ctx, sessionMaxIdle, gameMaxIdle)
	return args.Get(0).(sessionsvc.CleanupResult), args.Error(1)
}

type mockSettlement struct{ mock.Mock }

func (m *mockSettlement) SettleWager(ctx context.Context, w settlement.Wager) (settlement.Outcome, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(settlement.Outcome), args.Error(1)
}

func (m *mockSettlement) CloseGameSession(ctx context.Context, sessionID uuid.UUID, gameSessionID int64) (games.GameSession, error) {
	args := m.Called(ctx, sessionID, gameSessionID)
	return args.Get(0).(games.GameSession), args.Error(1)
}

type mockWallet struct{ mock.Mock }

func (m *mockWallet) Deposit(ctx context.Context, req wallet.DepositRequest) (wallet.DepositResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(wallet.DepositResult), args.Error(1)
}

func (m *mockWallet) Withdraw(ctx context.Context, req wallet.WithdrawRequest) (wallet.WithdrawResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(wallet.WithdrawResult), args.Error(1)
}

func (m *mockWallet) Reconcile(ctx context.Context, id uuid.UUID) (wallet.Reconciliation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(wallet.Reconciliation), args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) Process(ctx context.Context, req payments.ProcessRequest) (payments.ProcessResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payments.ProcessResult), args.Error(1)
}

func (m *mockPayments) Status(ctx context.Context, id int64) (transactions.Transaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(transactions.Transaction), args.Error(1)
}

func (m *mockPayments) Webhook(ctx context.Context, externalID string, status gateway.Status, event string) (transactions.Transaction, error) {
	args := m.Called(ctx, externalID, status, event)
	return args.Get(0).(transactions.Transaction), args.Error(1)
}

func (m *mockPayments) Methods(ctx context.Context) ([]paymentmethods.Method, error) {
	args := m.Called(ctx)
	return args.Get(0).([]paymentmethods.Method), args.Error(1)
}

type mockConfig struct{ mock.Mock }

func (m *mockConfig) Public(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockConfig) RateLimit(ctx context.Context) (settings.RateLimit, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.RateLimit), args.Error(1)
}

func (m *mockConfig) Set(ctx context.Context, e settingsrepo.Entry) error {
	return m.Called(ctx, e).Error(0)
}

type mockPinger struct{ err error }

func (m *mockPinger) PingContext(context.Context) error { return m.err }
