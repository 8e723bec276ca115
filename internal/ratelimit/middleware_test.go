package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, Rule) (bool, error) {
	return false, errors.New("redis down")
}

func serve(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/anon/generate-id", nil)
	req.RemoteAddr = remote

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	h := Middleware(NewMemory(time.Hour), "generate", Fixed(Rule{Limit: 2, Window: 5 * time.Minute}))(ok)

	assert.Equal(t, http.StatusCreated, serve(h, "10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusCreated, serve(h, "10.0.0.1:5001").Code)

	rec := serve(h, "10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "300", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded","retry_after":300}`, rec.Body.String())

	assert.Equal(t, http.StatusCreated, serve(h, "10.0.0.2:5000").Code, "other client")
}

func TestMiddlewareNoRules(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Middleware(NewMemory(time.Hour), "api", func(*http.Request) []Rule { return nil })(ok)

	for range 10 {
		assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
	}
}

func TestMiddlewareFailsOpen(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Middleware(brokenLimiter{}, "api", Fixed(Rule{Limit: 1, Window: time.Minute}))(ok)

	assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1:1").Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.7:4242"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", ClientIP(req))
}
