package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastprodman/anoncasino/internal/api"
	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/infra/logging"
	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/infra/redisutil"
	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/ratelimit"
	pggames "github.com/fastprodman/anoncasino/internal/repos/games/postgres"
	pgmethods "github.com/fastprodman/anoncasino/internal/repos/paymentmethods/postgres"
	pgsessions "github.com/fastprodman/anoncasino/internal/repos/sessions/postgres"
	pgsettings "github.com/fastprodman/anoncasino/internal/repos/settings/postgres"
	pgtransactions "github.com/fastprodman/anoncasino/internal/repos/transactions/postgres"
	"github.com/fastprodman/anoncasino/internal/services/payments"
	sessionsvc "github.com/fastprodman/anoncasino/internal/services/sessions"
	"github.com/fastprodman/anoncasino/internal/services/settings"
	"github.com/fastprodman/anoncasino/internal/services/settlement"
	"github.com/fastprodman/anoncasino/internal/services/wallet"
	"github.com/fastprodman/anoncasino/pkg/envconf"
	"github.com/fastprodman/anoncasino/pkg/shutdownqueue"
)

const version = "2.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

//nolint:funlen
func run(ctx context.Context) (retErr error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel, "api")

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres.DSN, pgutils.PoolOptions{
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.AddNamed("postgres", func(context.Context) error {
		return db.Close()
	})

	limiter, err := openLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	gw, sandbox, err := openGateway(cfg)
	if err != nil {
		return err
	}

	// --- Repos & services ---
	sessionsRepo := pgsessions.New(db)
	transactionsRepo := pgtransactions.New(db)
	gamesRepo := pggames.New(db)
	methodsRepo := pgmethods.New(db)

	cfgProvider := settings.New(pgsettings.New(db), nil)

	added, err := cfgProvider.EnsureDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	slog.Info("settings ready", "defaults_added", added)

	engine := outcome.NewEngine(outcome.DefaultTable(), outcome.SystemRand())

	sessionSvc := sessionsvc.New(sessionsRepo, transactionsRepo, gamesRepo)
	settlementSvc := settlement.New(db, sessionsRepo, transactionsRepo, gamesRepo, cfgProvider, engine)
	walletSvc := wallet.New(db, sessionsRepo, transactionsRepo, methodsRepo, cfgProvider)
	paymentSvc := payments.New(db, sessionsRepo, transactionsRepo, methodsRepo, gw, cfgProvider)

	// --- Background sweeper ---
	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})

	go func() {
		defer close(sweepDone)
		sessionSvc.RunSweeper(sweepCtx, cfg.Retention.SweepInterval, cfg.Retention.SessionMaxIdle, cfg.Retention.GameMaxIdle)
	}()

	shutdownqueue.AddNamed("sweeper", func(c context.Context) error {
		stopSweep()

		select {
		case <-sweepDone:
			return nil
		case <-c.Done():
			return fmt.Errorf("sweeper: %w", c.Err())
		}
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.Deps{
		DB:          db,
		Sessions:    sessionSvc,
		Settlement:  settlementSvc,
		Wallet:      walletSvc,
		Payments:    paymentSvc,
		Config:      cfgProvider,
		Limiter:     limiter,
		Sandbox:     sandbox,
		Retention:   cfg.Retention,
		CORSOrigins: cfg.CORSOrigins,
		App: api.AppInfo{
			Name:        cfg.AppName,
			Environment: cfg.AppEnv,
			Version:     version,
		},
	})

	// Register HTTP server graceful shutdown
	shutdownqueue.AddNamed("http", func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "environment", cfg.AppEnv, "sandbox_gateway", sandbox != nil)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

// openLimiter uses Redis when configured so limits hold across replicas,
// and an in-process limiter otherwise.
func openLimiter(ctx context.Context, cfg *apiConfig) (ratelimit.Limiter, error) {
	if !cfg.Redis.Enabled() {
		slog.Info("rate limiter: in-memory")
		return ratelimit.NewMemory(2 * time.Hour), nil
	}

	rdb, err := redisutil.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}

	shutdownqueue.AddNamed("redis", func(context.Context) error {
		return rdb.Close()
	})

	slog.Info("rate limiter: redis", "addr", cfg.Redis.Addr)

	return ratelimit.NewRedis(rdb), nil
}

// openGateway returns the HTTP gateway client when a base URL is set. The
// sandbox is only allowed outside production.
func openGateway(cfg *apiConfig) (gateway.Gateway, *gateway.Sandbox, error) {
	if cfg.Gateway.BaseURL != "" {
		gw, err := gateway.NewHTTPClient(cfg.Gateway)
		if err != nil {
			return nil, nil, fmt.Errorf("init gateway: %w", err)
		}

		return gw, nil, nil
	}

	if !cfg.development() {
		return nil, nil, errors.New("GATEWAY_BASE_URL is required outside development")
	}

	slog.Warn("payment gateway: sandbox")

	sb := gateway.NewSandbox()

	return sb, sb, nil
}
