package paymentmethods

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fastprodman/anoncasino/internal/money"
)

func TestFees(t *testing.T) {
	t.Parallel()

	m := Method{
		DepositFeePct:      decimal.RequireFromString("3.5"),
		DepositFeeFixed:    money.MustParse("0.30"),
		WithdrawalFeePct:   decimal.RequireFromString("2"),
		WithdrawalFeeFixed: 0,
	}

	assert.Equal(t, money.MustParse("3.80"), m.DepositFee(money.MustParse("100")))
	// 3.5% of 10.05 is 0.35175, rounded half-even to 0.35
	assert.Equal(t, money.MustParse("0.65"), m.DepositFee(money.MustParse("10.05")))
	assert.Equal(t, money.MustParse("1.00"), m.WithdrawalFee(money.MustParse("50")))
	assert.Zero(t, Method{}.DepositFee(money.MustParse("999")))
}
