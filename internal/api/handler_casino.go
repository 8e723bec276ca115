package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/anoncasino/internal/outcome"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
	sessionsvc "github.com/fastprodman/anoncasino/internal/services/sessions"
	"github.com/fastprodman/anoncasino/internal/services/settlement"
	"github.com/fastprodman/anoncasino/internal/services/wallet"
)

// PlaceBet settles one wager.
func (h *HandlerProvider) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := sessionsvc.ParseID(req.AnonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	game, err := outcome.ParseGame(req.GameType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Settlement.SettleWager(r.Context(), settlement.Wager{
		SessionID: id,
		Game:      game,
		Stake:     req.BetAmount,
		Params:    outcome.ParseBetParams(req.BetData),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		settlement.Outcome
	}{Message: "bet settled", Outcome: res})
}

func (h *HandlerProvider) CloseGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameSessionId"), 10, 64)
	if err != nil || gameID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid game session id")
		return
	}

	var req closeGameRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := sessionsvc.ParseID(req.AnonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	gs, err := h.Settlement.CloseGameSession(r.Context(), id, gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "game session closed",
		"game_session": gs,
	})
}

func (h *HandlerProvider) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := sessionsvc.ParseID(req.AnonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Wallet.Deposit(r.Context(), wallet.DepositRequest{
		SessionID:   id,
		Amount:      req.Amount,
		Method:      req.PaymentMethod,
		ExternalRef: req.ExternalRef,
		Metadata:    transactions.Metadata(req.Metadata),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		wallet.DepositResult
	}{Message: "deposit completed", DepositResult: res})
}

func (h *HandlerProvider) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id, err := sessionsvc.ParseID(req.AnonID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Wallet.Withdraw(r.Context(), wallet.WithdrawRequest{
		SessionID:   id,
		Amount:      req.Amount,
		Method:      req.PaymentMethod,
		Destination: req.Destination,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		wallet.WithdrawResult
	}{Message: "withdrawal requested", WithdrawResult: res})
}

// CasinoBalance reports the balance with the ledger totals, addressed by
// the anon_id query parameter.
func (h *HandlerProvider) CasinoBalance(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("anon_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "anon_id is required")
		return
	}

	sum, err := h.Sessions.Summary(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"anon_id":           sum.Session.ID,
		"balance":           sum.Session.Balance,
		"total_deposits":    sum.Totals.Deposits,
		"total_withdrawals": sum.Totals.Withdrawals,
		"total_bets":        sum.Totals.Bets,
		"total_wins":        sum.Totals.Wins,
		"net_result":        sum.Net,
	})
}

func (h *HandlerProvider) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := sessionsvc.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rec, err := h.Wallet.Reconcile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
