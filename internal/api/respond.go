package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/repos/games"
	"github.com/fastprodman/anoncasino/internal/repos/sessions"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
	"github.com/fastprodman/anoncasino/internal/services/payments"
	sessionsvc "github.com/fastprodman/anoncasino/internal/services/sessions"
	"github.com/fastprodman/anoncasino/internal/services/settings"
	"github.com/fastprodman/anoncasino/internal/services/settlement"
	"github.com/fastprodman/anoncasino/internal/services/wallet"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps a service error to its HTTP status. Unknown errors are 500,
// as is any storage failure whatever it wraps.
func statusFor(err error) int {
	switch {
	case errors.Is(err, settlement.ErrPersistence):
		return http.StatusInternalServerError

	case errors.Is(err, sessions.ErrSessionNotFound),
		errors.Is(err, transactions.ErrTransactionNotFound),
		errors.Is(err, games.ErrGameSessionNotFound),
		errors.Is(err, gateway.ErrChargeNotFound):
		return http.StatusNotFound

	case errors.Is(err, sessionsvc.ErrInvalidID),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrAmountOutOfRange),
		errors.Is(err, wallet.ErrMethodUnavailable),
		errors.Is(err, wallet.ErrDestinationRequired),
		errors.Is(err, wallet.ErrFeeExceedsAmount),
		errors.Is(err, payments.ErrInvalidAmount),
		errors.Is(err, payments.ErrAmountOutOfRange),
		errors.Is(err, gateway.ErrIncompleteCard),
		errors.Is(err, gateway.ErrUnsupportedMethod),
		errors.Is(err, settings.ErrInvalidValue):
		return http.StatusBadRequest

	case errors.Is(err, transactions.ErrDuplicateTransaction),
		errors.Is(err, games.ErrGameSessionClosed),
		errors.Is(err, payments.ErrNotGatewayCharge):
		return http.StatusConflict

	case errors.Is(err, settlement.ErrInvalidStake),
		errors.Is(err, sessions.ErrInsufficientFunds),
		errors.Is(err, settlement.ErrBelowMinimumBet),
		errors.Is(err, sessions.ErrNegativeBalance):
		return http.StatusUnprocessableEntity

	case errors.Is(err, payments.ErrChargeRefused):
		return http.StatusPaymentRequired

	case errors.Is(err, payments.ErrChargeFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the mapped status. Client errors carry the
// error text; server errors are logged and answered generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)

		msg := "internal error"
		if status == http.StatusBadGateway {
			msg = "payment gateway unavailable"
		}

		writeError(w, status, msg)

		return
	}

	writeError(w, status, err.Error())
}

// decodeBody reads a JSON body into dst and validates it.
func (h *HandlerProvider) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))

		return false
	}

	err = h.validate.Struct(dst)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
			}

			writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: details})

			return false
		}

		writeError(w, http.StatusBadRequest, err.Error())

		return false
	}

	return true
}

// queryInt reads a positive integer query parameter, def when absent or bad.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}

	return v
}
