package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
)

// Policy returns the rules that apply to r. No rules means no limiting.
type Policy func(r *http.Request) []Rule

// Fixed always applies rules.
func Fixed(rules ...Rule) Policy {
	return func(*http.Request) []Rule { return rules }
}

// ClientIP is the request's remote host. Behind a proxy it relies on
// middleware.RealIP having rewritten RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Middleware rejects requests over any rule of policy with 429. Keys are the
// client IP under scope. A failing limiter lets the request through.
func Middleware(l Limiter, scope string, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + ClientIP(r)

			for _, rule := range policy(r) {
				ok, err := l.Allow(r.Context(), key, rule)
				if err != nil {
					slog.WarnContext(r.Context(), "rate limiter unavailable", "key", key, "error", err)
					continue
				}

				if !ok {
					tooMany(w, rule)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tooMany(w http.ResponseWriter, rule Rule) {
	retry := int(rule.Window.Seconds())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": retry,
	})
}
