package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	settingsrepo "github.com/fastprodman/anoncasino/internal/repos/settings"
)

// Healthz is the liveness probe.
func (h *HandlerProvider) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports readiness, including database reachability.
func (h *HandlerProvider) Health(w http.ResponseWriter, r *http.Request) {
	status, database, code := "healthy", "healthy", http.StatusOK

	err := h.DB.PingContext(r.Context())
	if err != nil {
		status, database, code = "unhealthy", "error: "+err.Error(), http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":      status,
		"database":    database,
		"timestamp":   h.now().UTC(),
		"version":     h.App.Version,
		"environment": h.App.Environment,
		"casino_name": h.App.Name,
	})
}

// PublicConfig exposes the public settings to clients.
func (h *HandlerProvider) PublicConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Config.Public(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	cfg["app_name"] = h.App.Name
	cfg["environment"] = h.App.Environment

	writeJSON(w, http.StatusOK, map[string]any{
		"config":      cfg,
		"version":     h.App.Version,
		"environment": h.App.Environment,
	})
}

func (h *HandlerProvider) SetSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	e := settingsrepo.Entry{
		Key:         chi.URLParam(r, "key"),
		Value:       req.Value,
		Type:        settingsrepo.ValueType(req.Type),
		Description: req.Description,
		Category:    req.Category,
		IsPublic:    req.IsPublic,
	}

	err := h.Config.Set(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "setting updated", "key": e.Key})
}
