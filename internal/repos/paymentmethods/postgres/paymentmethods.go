package paymentmethods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/money"
	"github.com/fastprodman/anoncasino/internal/repos/paymentmethods"
)

var _ paymentmethods.PaymentMethods = (*methodsRepo)(nil)

type methodsRepo struct{ db *sql.DB }

func New(db *sql.DB) *methodsRepo {
	return &methodsRepo{db: db}
}

const methodColumns = `name, display_name, description, is_active, supports_deposit, supports_withdrawal,
	min_deposit, max_deposit, min_withdrawal, max_withdrawal,
	deposit_fee_percentage, deposit_fee_fixed, withdrawal_fee_percentage, withdrawal_fee_fixed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMethod(row rowScanner) (paymentmethods.Method, error) {
	var (
		m                          paymentmethods.Method
		minDep, maxDep, minW, maxW sql.NullInt64
	)

	err := row.Scan(
		&m.Name, &m.DisplayName, &m.Description, &m.IsActive, &m.SupportsDeposit, &m.SupportsWithdrawal,
		&minDep, &maxDep, &minW, &maxW,
		&m.DepositFeePct, &m.DepositFeeFixed, &m.WithdrawalFeePct, &m.WithdrawalFeeFixed,
	)
	if err != nil {
		return paymentmethods.Method{}, err
	}

	m.MinDeposit = amountPtr(minDep)
	m.MaxDeposit = amountPtr(maxDep)
	m.MinWithdrawal = amountPtr(minW)
	m.MaxWithdrawal = amountPtr(maxW)

	return m, nil
}

func amountPtr(v sql.NullInt64) *money.Amount {
	if !v.Valid {
		return nil
	}

	a := money.Amount(v.Int64)

	return &a
}

func (r *methodsRepo) Get(ctx context.Context, name string) (paymentmethods.Method, error) {
	m, err := scanMethod(r.db.QueryRowContext(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE name = $1
	`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return paymentmethods.Method{}, paymentmethods.ErrMethodNotFound
		}

		return paymentmethods.Method{}, fmt.Errorf("get payment method %q: %w", name, err)
	}

	return m, nil
}

func (r *methodsRepo) ListActive(ctx context.Context) ([]paymentmethods.Method, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []paymentmethods.Method

	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}

	return out, nil
}
