package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

type DepositRequest struct {
	SessionID   uuid.UUID
	Amount      money.Amount
	Method      string
	ExternalRef string
	Metadata    transactions.Metadata
}

type DepositResult struct {
	TransactionID int64        `json:"transaction_id"`
	Amount        money.Amount `json:"amount"`
	Fee           money.Amount `json:"fee"`
	Net           money.Amount `json:"net_amount"`
	NewBalance    money.Amount `json:"new_balance"`
	Method        string       `json:"payment_method"`
}

// Deposit credits the amount net of the method's fee and records a completed
// deposit of that net amount. Gross amount and fee go to the metadata.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (DepositResult, error) {
	if req.Amount <= 0 {
		return DepositResult{}, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount)
	}

	limits, err := s.limits.DepositLimits(ctx)
	if err != nil {
		return DepositResult{}, fmt.Errorf("deposit limits: %w", err)
	}

	if !limits.Allows(req.Amount) {
		return DepositResult{}, fmt.Errorf("%w: deposit must be between %s and %s",
			ErrAmountOutOfRange, limits.Min, limits.Max)
	}

	m, err := s.method(ctx, req.Method, false)
	if err != nil {
		return DepositResult{}, err
	}

	err = checkRange(req.Amount, m.MinDeposit, m.MaxDeposit, m.DisplayName+" deposit")
	if err != nil {
		return DepositResult{}, err
	}

	fee := m.DepositFee(req.Amount)
	net := req.Amount - fee

	if net <= 0 {
		return DepositResult{}, fmt.Errorf("%w: fee %s on %s", ErrFeeExceedsAmount, fee, req.Amount)
	}

	meta := transactions.Metadata{}
	for k, v := range req.Metadata {
		meta[k] = v
	}

	meta["gross_amount"] = req.Amount.String()
	meta["fee"] = fee.String()

	res := DepositResult{Amount: req.Amount, Fee: fee, Net: net, Method: m.DisplayName}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.sessions.LockForUpdate(tx, req.SessionID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		balance, err := s.sessions.ApplyDelta(tx, req.SessionID, net, 0)
		if err != nil {
			return fmt.Errorf("credit deposit: %w", err)
		}

		t := &transactions.Transaction{
			SessionID:     req.SessionID,
			Type:          transactions.TypeDeposit,
			Amount:        net,
			BalanceAfter:  &balance,
			Status:        transactions.StatusCompleted,
			PaymentMethod: m.Name,
			ExternalRef:   req.ExternalRef,
			Description:   fmt.Sprintf("Deposit via %s", m.DisplayName),
			Metadata:      meta,
		}

		err = s.transactions.Insert(tx, t)
		if err != nil {
			return fmt.Errorf("record deposit: %w", err)
		}

		res.TransactionID = t.ID
		res.NewBalance = balance

		return nil
	})
	if err != nil {
		return DepositResult{}, fmt.Errorf("deposit: %w", err)
	}

	slog.InfoContext(ctx, "deposit completed",
		"anon_id", req.SessionID, "method", m.Name, "amount", req.Amount, "fee", fee, "balance", res.NewBalance)

	return res, nil
}
