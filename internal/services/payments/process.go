package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

type ProcessRequest struct {
	SessionID uuid.UUID
	Amount    money.Amount
	Method    string
	Customer  gateway.Customer
	Card      *gateway.Card
}

type ProcessResult struct {
	TransactionID   int64               `json:"transaction_id"`
	GatewayChargeID string              `json:"gateway_transaction_id"`
	Status          transactions.Status `json:"status"`
	GatewayStatus   gateway.Status      `json:"gateway_status"`
	Amount          money.Amount        `json:"amount"`
	Method          string              `json:"payment_method"`
	PixQRCode       string              `json:"pix_qr_code,omitempty"`
	PixQRImage      string              `json:"pix_qr_image,omitempty"`
	PixExpiresAt    *time.Time          `json:"pix_expiration_date,omitempty"`
	NewBalance      money.Amount        `json:"new_balance"`
}

// Process records a pending deposit, asks the gateway to collect it and
// applies the answer. Card charges paid on the spot credit the session
// immediately; PIX charges stay processing until the gateway reports payment.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = DefaultMethod
	}

	if req.Amount <= 0 {
		return ProcessResult{}, fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount)
	}

	limits, err := s.limits.DepositLimits(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("deposit limits: %w", err)
	}

	if !limits.Allows(req.Amount) {
		return ProcessResult{}, fmt.Errorf("%w: deposit must be between %s and %s",
			ErrAmountOutOfRange, limits.Min, limits.Max)
	}

	req.Customer.SessionID = req.SessionID.String()
	charge := gateway.Charge{Method: method, Amount: req.Amount, Customer: req.Customer, Card: req.Card}

	err = charge.Validate()
	if err != nil {
		return ProcessResult{}, err
	}

	sess, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("get session: %w", err)
	}

	pending := &transactions.Transaction{
		SessionID:     req.SessionID,
		Type:          transactions.TypeDeposit,
		Amount:        req.Amount,
		Status:        transactions.StatusPending,
		PaymentMethod: method,
		Description:   fmt.Sprintf("Deposit via %s", method),
		Metadata: transactions.Metadata{
			"gateway_request": map[string]any{
				"method":        method,
				"amount":        req.Amount.String(),
				"customer_name": req.Customer.Name,
			},
		},
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.transactions.Insert(tx, pending)
	})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("record pending deposit: %w", err)
	}

	res := ProcessResult{
		TransactionID: pending.ID,
		Status:        pending.Status,
		Amount:        req.Amount,
		Method:        method,
		NewBalance:    sess.Balance,
	}

	charged, chargeErr := s.gateway.CreateCharge(ctx, charge)
	if chargeErr != nil {
		err = s.fail(ctx, pending.ID, transactions.Metadata{"gateway_error": chargeErr.Error()})
		if err != nil {
			return res, errors.Join(fmt.Errorf("%w: %w", ErrChargeFailed, chargeErr), err)
		}

		res.Status = transactions.StatusFailed

		return res, fmt.Errorf("%w: %w", ErrChargeFailed, chargeErr)
	}

	res.GatewayChargeID = charged.ID
	res.GatewayStatus = charged.Status
	res.PixQRCode = charged.PixQRCode
	res.PixQRImage = charged.PixQRImage
	res.PixExpiresAt = charged.PixExpiresAt

	var updated transactions.Transaction

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := s.transactions.GetForUpdate(tx, pending.ID)
		if err != nil {
			return fmt.Errorf("lock transaction: %w", err)
		}

		updated, err = s.apply(tx, t, charged.Status, transactions.StatusUpdate{
			ExternalRef: charged.ID,
			Metadata: transactions.Metadata{
				"gateway_response": map[string]any{"id": charged.ID, "status": string(charged.Status)},
				"processed_at":     s.now().UTC().Format(time.RFC3339),
			},
		})

		return err
	})
	if err != nil {
		return res, fmt.Errorf("apply gateway response: %w", err)
	}

	res.Status = updated.Status
	if updated.BalanceAfter != nil {
		res.NewBalance = *updated.BalanceAfter
	}

	slog.InfoContext(ctx, "payment processed",
		"transaction_id", res.TransactionID, "anon_id", req.SessionID, "method", method,
		"amount", req.Amount, "gateway_status", charged.Status)

	if charged.Status.Rejected() {
		return res, fmt.Errorf("%w: %s", ErrChargeRefused, charged.RefuseReason)
	}

	return res, nil
}

func (s *Service) fail(ctx context.Context, id int64, meta transactions.Metadata) error {
	meta["failed_at"] = s.now().UTC().Format(time.RFC3339)

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.transactions.UpdateStatus(tx, id, transactions.StatusUpdate{
			Status:   transactions.StatusFailed,
			Metadata: meta,
		})
	})
	if err != nil {
		return fmt.Errorf("mark deposit %d failed: %w", id, err)
	}

	return nil
}
