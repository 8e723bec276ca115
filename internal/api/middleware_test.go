package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fastprodman/anoncasino/internal/ratelimit"
	"github.com/fastprodman/anoncasino/internal/services/settings"
)

func TestSettingsPolicy(t *testing.T) {
	t.Parallel()

	cfg := new(mockConfig)
	cfg.On("RateLimit", mock.Anything).
		Return(settings.RateLimit{Enabled: true, PerMinute: 60, PerHour: 1000}, nil).Once()
	cfg.On("RateLimit", mock.Anything).
		Return(settings.RateLimit{}, errors.New("db down")).Once()
	cfg.On("RateLimit", mock.Anything).
		Return(settings.RateLimit{Enabled: false, PerMinute: 60}, nil).Once()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := newSettingsPolicy(cfg, 30*time.Second)
	p.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	want := []ratelimit.Rule{
		{Limit: 60, Window: time.Minute},
		{Limit: 1000, Window: time.Hour},
	}

	assert.Equal(t, want, p.Rules(req))

	// cached
	now = now.Add(10 * time.Second)
	assert.Equal(t, want, p.Rules(req))

	// lookup fails, last rules stay
	now = now.Add(time.Minute)
	assert.Equal(t, want, p.Rules(req))

	// disabled
	assert.Empty(t, p.Rules(req))

	cfg.AssertExpectations(t)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name, key, sent string
		want            int
	}{
		{"match", "k", "k", http.StatusNoContent},
		{"mismatch", "k", "x", http.StatusUnauthorized},
		{"missing", "k", "", http.StatusUnauthorized},
		{"disabled", "", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.sent != "" {
				req.Header.Set(adminKeyHeader, tc.sent)
			}

			rec := httptest.NewRecorder()
			requireAdmin(tc.key)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
