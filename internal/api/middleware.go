package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fastprodman/anoncasino/internal/ratelimit"
)

const adminKeyHeader = "X-Admin-Key"

// requestLogger logs one line per request once the response is written.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// requireAdmin rejects requests whose admin key header does not match key.
// An empty key disables the protected routes entirely.
func requireAdmin(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(adminKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "admin key required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// settingsPolicy turns the configured per-minute and per-hour limits into a
// rate limit policy. Lookups are cached for ttl; a failed lookup keeps the
// last known rules.
type settingsPolicy struct {
	cfg ConfigService
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	rules   []ratelimit.Rule
	fetched time.Time
}

func newSettingsPolicy(cfg ConfigService, ttl time.Duration) *settingsPolicy {
	return &settingsPolicy{cfg: cfg, ttl: ttl, now: time.Now}
}

func (p *settingsPolicy) Rules(r *http.Request) []ratelimit.Rule {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.fetched.IsZero() && p.now().Sub(p.fetched) < p.ttl {
		return p.rules
	}

	rl, err := p.cfg.RateLimit(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "rate limit settings unavailable", "error", err)
		return p.rules
	}

	p.fetched = p.now()
	p.rules = nil

	if !rl.Enabled {
		return nil
	}

	if rl.PerMinute > 0 {
		p.rules = append(p.rules, ratelimit.Rule{Limit: rl.PerMinute, Window: time.Minute})
	}

	if rl.PerHour > 0 {
		p.rules = append(p.rules, ratelimit.Rule{Limit: rl.PerHour, Window: time.Hour})
	}

	return p.rules
}
