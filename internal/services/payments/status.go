package payments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/transactions"
)

// Status returns the transaction, first asking the gateway about it when it
// is still open. A gateway that cannot be reached leaves the local state as is.
func (s *Service) Status(ctx context.Context, id int64) (transactions.Transaction, error) {
	t, err := s.transactions.Get(ctx, id)
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}

	if t.Status.Terminal() || t.ExternalRef == "" {
		return t, nil
	}

	charge, err := s.gateway.ChargeStatus(ctx, t.ExternalRef)
	if err != nil {
		slog.WarnContext(ctx, "gateway status check failed", "transaction_id", id, "error", err)
		return t, nil
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		locked, err := s.transactions.GetForUpdate(tx, id)
		if err != nil {
			return fmt.Errorf("lock transaction: %w", err)
		}

		t, err = s.apply(tx, locked, charge.Status, transactions.StatusUpdate{Metadata: transactions.Metadata{
			"gateway_status_check": string(charge.Status),
			"status_checked_at":    s.now().UTC().Format(time.RFC3339),
		}})

		return err
	})
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("apply gateway status: %w", err)
	}

	return t, nil
}

// Webhook applies a gateway notification about charge externalID.
func (s *Service) Webhook(ctx context.Context, externalID string, status gateway.Status, event string) (transactions.Transaction, error) {
	var t transactions.Transaction

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		locked, err := s.transactions.GetByExternalRefForUpdate(tx, externalID)
		if err != nil {
			return fmt.Errorf("lock transaction: %w", err)
		}

		if locked.Type != transactions.TypeDeposit {
			return fmt.Errorf("%w: %d is a %s", ErrNotGatewayCharge, locked.ID, locked.Type)
		}

		t, err = s.apply(tx, locked, status, transactions.StatusUpdate{Metadata: transactions.Metadata{
			"webhook_event":       event,
			"webhook_status":      string(status),
			"webhook_received_at": s.now().UTC().Format(time.RFC3339),
		}})

		return err
	})
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("webhook %s: %w", externalID, err)
	}

	return t, nil
}
