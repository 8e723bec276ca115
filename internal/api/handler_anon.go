package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionsvc "github.com/fastprodman/anoncasino/internal/services/sessions"
)

// GenerateID creates a fresh anonymous session.
func (h *HandlerProvider) GenerateID(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Generate(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"anon_id": sess.ID,
		"balance": sess.Balance,
		"message": "anonymous session created",
	})
}

func (h *HandlerProvider) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

func (h *HandlerProvider) SessionBalance(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"anon_id": sess.ID,
		"balance": sess.Balance,
	})
}

func (h *HandlerProvider) SessionSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Sessions.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

func (h *HandlerProvider) SessionTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := h.Sessions.Transactions(r.Context(), chi.URLParam(r, "id"),
		queryInt(r, "page", 1), queryInt(r, "per_page", sessionsvc.DefaultPerPage))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *HandlerProvider) SessionGames(w http.ResponseWriter, r *http.Request) {
	page, err := h.Sessions.Games(r.Context(), chi.URLParam(r, "id"),
		queryInt(r, "page", 1), queryInt(r, "per_page", sessionsvc.DefaultPerPage))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ValidateID never fails with a client error: malformed and unknown ids are
// reported as invalid in the body.
func (h *HandlerProvider) ValidateID(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	if _, err := sessionsvc.ParseID(raw); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "exists": false})
		return
	}

	sess, err := h.Sessions.Get(r.Context(), raw)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeJSON(w, http.StatusOK, map[string]any{"valid": true, "exists": false})
			return
		}

		writeServiceError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":         true,
		"exists":        true,
		"is_active":     sess.IsActive,
		"balance":       sess.Balance,
		"last_activity": sess.LastActivity,
	})
}

func (h *HandlerProvider) CleanupSessions(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sessions.Cleanup(r.Context(), h.Retention.SessionMaxIdle, h.Retention.GameMaxIdle)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":                 "cleanup completed",
		"removed_count":           res.SessionsRemoved,
		"abandoned_game_sessions": res.GamesAbandoned,
	})
}
