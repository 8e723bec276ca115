package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/services/payments"
	sessionsvc "github.com/fastprodman/anoncasino/internal/services/sessions"
)

func (h *HandlerProvider) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := sessionsvc.ParseID(req.AnonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Payments.Process(r.Context(), payments.ProcessRequest{
		SessionID: id,
		Amount:    req.Amount,
		Method:    req.PaymentMethod,
		Customer: gateway.Customer{
			SessionID: id.String(),
			Name:      req.CustomerName,
			Email:     req.CustomerEmail,
			Document:  req.CustomerCPF,
		},
		Card: req.Card.gateway(),
	})
	if err != nil {
		// a refused charge is still recorded; the client gets the record too
		if errors.Is(err, payments.ErrChargeRefused) {
			writeJSON(w, http.StatusPaymentRequired, struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
				payments.ProcessResult
			}{Error: err.Error(), ProcessResult: res})

			return
		}

		writeServiceError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		payments.ProcessResult
	}{Success: true, ProcessResult: res})
}

func (h *HandlerProvider) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "txId"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	t, err := h.Payments.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"transaction": t,
	})
}

// PaymentWebhook receives gateway status notifications. Unknown charges are
// acknowledged with 404 so the gateway stops retrying them.
func (h *HandlerProvider) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	t, err := h.Payments.Webhook(r.Context(), string(req.Transaction.ID), req.Transaction.Status, req.Event)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"transaction_id": t.ID,
		"status":         t.Status,
	})
}

func (h *HandlerProvider) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Payments.Methods(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"methods": methods,
	})
}

// SandboxPay marks a sandbox PIX charge as paid and feeds the change through
// the webhook path, the way the real gateway would.
func (h *HandlerProvider) SandboxPay(w http.ResponseWriter, r *http.Request) {
	chargeID := chi.URLParam(r, "chargeId")

	err := h.Sandbox.MarkPaid(chargeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	t, err := h.Payments.Webhook(r.Context(), chargeID, gateway.StatusPaid, "sandbox.paid")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "sandbox charge paid", "charge_id", chargeID, "transaction_id", t.ID)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"transaction_id": t.ID,
		"status":         t.Status,
	})
}
