package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

type WithdrawRequest struct {
	SessionID   uuid.UUID
	Amount      money.Amount
	Method      string
	Destination string
}

type WithdrawResult struct {
	TransactionID int64               `json:"transaction_id"`
	Amount        money.Amount        `json:"amount"`
	Fee           money.Amount        `json:"fee"`
	Net           money.Amount        `json:"net_amount"`
	NewBalance    money.Amount        `json:"new_balance"`
	Status        transactions.Status `json:"status"`
}

// Withdraw debits the full amount right away and leaves a pending withdraw
// transaction for the payout to be settled out of band. The player receives
// the amount net of the method's fee.
func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (WithdrawResult, error) {
	if req.Amount <= 0 {
		return WithdrawResult{}, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount)
	}

	limits, err := s.limits.WithdrawLimits(ctx)
	if err != nil {
		return WithdrawResult{}, fmt.Errorf("withdraw limits: %w", err)
	}

	if !limits.Allows(req.Amount) {
		return WithdrawResult{}, fmt.Errorf("%w: withdrawal minimum is %s", ErrAmountOutOfRange, limits.Min)
	}

	dest := strings.TrimSpace(req.Destination)
	if dest == "" {
		return WithdrawResult{}, ErrDestinationRequired
	}

	m, err := s.method(ctx, req.Method, true)
	if err != nil {
		return WithdrawResult{}, err
	}

	err = checkRange(req.Amount, m.MinWithdrawal, m.MaxWithdrawal, m.DisplayName+" withdrawal")
	if err != nil {
		return WithdrawResult{}, err
	}

	fee := m.WithdrawalFee(req.Amount)
	net := req.Amount - fee

	if net <= 0 {
		return WithdrawResult{}, fmt.Errorf("%w: fee %s on %s", ErrFeeExceedsAmount, fee, req.Amount)
	}

	res := WithdrawResult{Amount: req.Amount, Fee: fee, Net: net, Status: transactions.StatusPending}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		sess, err := s.sessions.LockForUpdate(tx, req.SessionID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		// pre-check against locked balance
		if req.Amount > sess.Balance {
			return fmt.Errorf("withdraw %s over balance %s: %w", req.Amount, sess.Balance, ErrInsufficientFunds)
		}

		balance, err := s.sessions.ApplyDelta(tx, req.SessionID, -req.Amount, 0)
		if err != nil {
			return fmt.Errorf("debit withdrawal: %w", err)
		}

		t := &transactions.Transaction{
			SessionID:     req.SessionID,
			Type:          transactions.TypeWithdraw,
			Amount:        req.Amount,
			BalanceAfter:  &balance,
			Status:        transactions.StatusPending,
			PaymentMethod: m.Name,
			Description:   fmt.Sprintf("Withdrawal via %s", m.DisplayName),
			Metadata: transactions.Metadata{
				"destination": dest,
				"fee":         fee.String(),
				"net_amount":  net.String(),
			},
		}

		err = s.transactions.Insert(tx, t)
		if err != nil {
			return fmt.Errorf("record withdrawal: %w", err)
		}

		res.TransactionID = t.ID
		res.NewBalance = balance

		return nil
	})
	if err != nil {
		return WithdrawResult{}, fmt.Errorf("withdraw: %w", err)
	}

	slog.InfoContext(ctx, "withdrawal requested",
		"anon_id", req.SessionID, "method", m.Name, "amount", req.Amount, "balance", res.NewBalance)

	return res, nil
}
