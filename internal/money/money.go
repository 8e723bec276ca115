// Package money holds the fixed-point amount type used for balances, stakes
// and payouts. Amounts are stored as int64 minor units (cents); decimal
// conversion and rounding happen only in this package.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of the currency.
const Scale = 2

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrTooPrecise    = errors.New("amount supports up to 2 decimals")
)

// Amount is a monetary value in minor units.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromMajor builds an amount from whole currency units (FromMajor(10) == 10.00).
func FromMajor(units int64) Amount {
	return Amount(units * 100)
}

// Parse converts a decimal string with up to two fractional digits.
// Signs are accepted; callers decide whether negatives are allowed.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if d.Exponent() < -Scale && !d.Equal(d.Truncate(Scale)) {
		return 0, ErrTooPrecise
	}

	// minor units must fit int64; IntPart would wrap silently
	if !d.RoundBank(Scale).Shift(Scale).BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	return FromDecimal(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return a
}

// FromDecimal rounds d half-to-even at the currency scale.
// It is the single rounding point of the module.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.RoundBank(Scale).Shift(Scale).IntPart())
}

// Decimal returns the exact decimal value of a.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String renders a with exactly two fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

func (a Amount) IsPositive() bool { return a > 0 }

// MarshalJSON encodes a as a decimal string ("12.34").
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both "12.34" and 12.34.
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}

	raw = strings.Trim(raw, `"`)

	v, err := Parse(raw)
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// UnmarshalText lets Amount be used with envconf and viper.
func (a *Amount) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// ApplyHouseEdge computes stake*multiplier and, when that exceeds the stake,
// keeps edge of the profit for the house: payout -= (payout-stake)*edge.
// Pushes and losses pass through untouched. The result is rounded once.
func ApplyHouseEdge(stake Amount, multiplier, edge decimal.Decimal) Amount {
	s := stake.Decimal()

	payout := s.Mul(multiplier)
	if payout.GreaterThan(s) {
		payout = payout.Sub(payout.Sub(s).Mul(edge))
	}

	if payout.IsNegative() {
		return 0
	}

	return FromDecimal(payout)
}

// Percent returns pct percent of a (Percent(100.00, 2.5) == 2.50).
func Percent(a Amount, pct decimal.Decimal) Amount {
	return FromDecimal(a.Decimal().Mul(pct).Div(decimal.NewFromInt(100)))
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a > b {
		return a
	}

	return b
}
