package paymentmethods

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/anoncasino/internal/money"
)

var ErrMethodNotFound = errors.New("payment method not found")

// Method is a payment rail with its own limits and fees. Nil limits mean
// the method does not restrict that bound.
type Method struct {
	Name               string          `json:"method_name"`
	DisplayName        string          `json:"display_name"`
	Description        string          `json:"description"`
	IsActive           bool            `json:"is_active"`
	SupportsDeposit    bool            `json:"supports_deposit"`
	SupportsWithdrawal bool            `json:"supports_withdrawal"`
	MinDeposit         *money.Amount   `json:"min_deposit"`
	MaxDeposit         *money.Amount   `json:"max_deposit"`
	MinWithdrawal      *money.Amount   `json:"min_withdrawal"`
	MaxWithdrawal      *money.Amount   `json:"max_withdrawal"`
	DepositFeePct      decimal.Decimal `json:"deposit_fee_percentage"`
	DepositFeeFixed    money.Amount    `json:"deposit_fee_fixed"`
	WithdrawalFeePct   decimal.Decimal `json:"withdrawal_fee_percentage"`
	WithdrawalFeeFixed money.Amount    `json:"withdrawal_fee_fixed"`
}

// DepositFee is pct% of amount plus the fixed part.
func (m Method) DepositFee(amount money.Amount) money.Amount {
	return money.Percent(amount, m.DepositFeePct) + m.DepositFeeFixed
}

func (m Method) WithdrawalFee(amount money.Amount) money.Amount {
	return money.Percent(amount, m.WithdrawalFeePct) + m.WithdrawalFeeFixed
}

type PaymentMethods interface {
	Get(ctx context.Context, name string) (Method, error)
	ListActive(ctx context.Context) ([]Method, error)
}
