package api

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/config"
	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/ratelimit"
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

type Pinger interface {
	PingContext(ctx context.Context) error
}

type SessionService interface {
	Generate(ctx context.Context) (sessions.Session, error)
	Get(ctx context.Context, rawID string) (sessions.Session, error)
	Summary(ctx context.Context, rawID string) (sessionsvc.Summary, error)
	Transactions(ctx context.Context, rawID string, page, perPage int) (sessionsvc.TransactionPage, error)
	Games(ctx context.Context, rawID string, page, perPage int) (sessionsvc.GamePage, error)
	Cleanup(ctx context.Context, sessionMaxIdle, gameMaxIdle time.Duration) (sessionsvc.CleanupResult, error)
}

type SettlementService interface {
	SettleWager(ctx context.Context, w settlement.Wager) (settlement.Outcome, error)
	CloseGameSession(ctx context.Context, sessionID uuid.UUID, gameSessionID int64) (games.GameSession, error)
}

type WalletService interface {
	Deposit(ctx context.Context, req wallet.DepositRequest) (wallet.DepositResult, error)
	Withdraw(ctx context.Context, req wallet.WithdrawRequest) (wallet.WithdrawResult, error)
	Reconcile(ctx context.Context, id uuid.UUID) (wallet.Reconciliation, error)
}

type PaymentService interface {
	Process(ctx context.Context, req payments.ProcessRequest) (payments.ProcessResult, error)
	Status(ctx context.Context, id int64) (transactions.Transaction, error)
	Webhook(ctx context.Context, externalID string, status gateway.Status, event string) (transactions.Transaction, error)
	Methods(ctx context.Context) ([]paymentmethods.Method, error)
}

type ConfigService interface {
	Public(ctx context.Context) (map[string]any, error)
	RateLimit(ctx context.Context) (settings.RateLimit, error)
	Set(ctx context.Context, e settingsrepo.Entry) error
}

// AppInfo is reported by the health and config endpoints.
type AppInfo struct {
	Name        string
	Environment string
	Version     string
}

// Deps is everything the HTTP layer calls into.
type Deps struct {
	DB          Pinger
	Sessions    SessionService
	Settlement  SettlementService
	Wallet      WalletService
	Payments    PaymentService
	Config      ConfigService
	Limiter     ratelimit.Limiter
	Sandbox     *gateway.Sandbox // development only
	Retention   config.RetentionConfig
	App         AppInfo
	CORSOrigins []string
}

// HandlerProvider exposes the services as HTTP handlers.
type HandlerProvider struct {
	Deps

	validate *validator.Validate
	now      func() time.Time
}

func NewHandler(d Deps) *HandlerProvider {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &HandlerProvider{Deps: d, validate: v, now: time.Now}
}
