package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fastprodman/anoncasino/internal/ratelimit"
)

const (
	requestTimeout = 30 * time.Second
	policyCacheTTL = 30 * time.Second
)

// generateIDRule throttles session creation per client IP.
var generateIDRule = ratelimit.Rule{Limit: 5, Window: 5 * time.Minute}

// NewRouter registers every endpoint on a chi router.
func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(d.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", adminKeyHeader},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(ratelimit.Middleware(d.Limiter, "api", newSettingsPolicy(d.Config, policyCacheTTL).Rules))
		}

		r.Get("/health", h.Health)
		r.Get("/config", h.PublicConfig)

		r.Route("/anon", func(r chi.Router) {
			r.With(limitWith(d.Limiter, "generate-id", generateIDRule)).Post("/generate-id", h.GenerateID)

			r.Get("/session/{id}", h.GetSession)
			r.Get("/session/{id}/balance", h.SessionBalance)
			r.Get("/session/{id}/summary", h.SessionSummary)
			r.Get("/session/{id}/transactions", h.SessionTransactions)
			r.Get("/session/{id}/games", h.SessionGames)
			r.Get("/validate/{id}", h.ValidateID)

			r.With(requireAdmin(d.Retention.AdminKey)).Post("/cleanup-old-sessions", h.CleanupSessions)
		})

		r.Route("/casino", func(r chi.Router) {
			r.Post("/bet", h.PlaceBet)
			r.Post("/games/{gameSessionId}/close", h.CloseGame)
			r.Post("/deposit", h.Deposit)
			r.Post("/withdraw", h.Withdraw)
			r.Get("/balance", h.CasinoBalance)

			r.With(requireAdmin(d.Retention.AdminKey)).Get("/reconcile/{id}", h.Reconcile)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/process", h.ProcessPayment)
			r.Get("/status/{txId}", h.PaymentStatus)
			r.Post("/webhook", h.PaymentWebhook)
			r.Get("/methods", h.PaymentMethods)

			if d.Sandbox != nil {
				r.Post("/sandbox/{chargeId}/pay", h.SandboxPay)
			}
		})

		r.With(requireAdmin(d.Retention.AdminKey)).Put("/admin/settings/{key}", h.SetSetting)
	})

	return r
}

func limitWith(l ratelimit.Limiter, scope string, rule ratelimit.Rule) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return ratelimit.Middleware(l, scope, ratelimit.Fixed(rule))
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}

	return origins
}
