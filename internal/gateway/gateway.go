// Package gateway talks to the external payment provider that collects
// deposits.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/fastprodman/anoncasino/internal/money"
)

var (
	ErrUnsupportedMethod = errors.New("payment method not supported by gateway")
	ErrIncompleteCard    = errors.New("incomplete card data")
	ErrChargeNotFound    = errors.New("charge not found")
	ErrGateway           = errors.New("gateway request failed")
)

// Status is the provider-side state of a charge.
type Status string

const (
	StatusPaid           Status = "paid"
	StatusAuthorized     Status = "authorized"
	StatusWaitingPayment Status = "waiting_payment"
	StatusProcessing     Status = "processing"
	StatusRefused        Status = "refused"
	StatusFailed         Status = "failed"
)

// Settled reports whether the money was collected.
func (s Status) Settled() bool { return s == StatusPaid }

// Rejected reports whether the charge will never be collected.
func (s Status) Rejected() bool { return s == StatusRefused || s == StatusFailed }

const (
	MethodPix        = "pix"
	MethodCreditCard = "credit_card"
	MethodDebitCard  = "debit_card"
)

func isCard(method string) bool {
	return method == MethodCreditCard || method == MethodDebitCard
}

type Customer struct {
	SessionID string `json:"external_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Document  string `json:"document"`
}

type Card struct {
	Number         string `json:"number"`
	HolderName     string `json:"holder_name"`
	ExpirationDate string `json:"expiration_date"`
	CVV            string `json:"cvv"`
}

func (c *Card) complete() bool {
	return c != nil && c.Number != "" && c.HolderName != "" && c.ExpirationDate != "" && c.CVV != ""
}

// Charge asks the provider to collect Amount from the customer.
type Charge struct {
	Method   string
	Amount   money.Amount
	Customer Customer
	Card     *Card
}

// Validate checks what can be checked before calling the provider.
func (c Charge) Validate() error {
	switch {
	case c.Method == MethodPix:
		return nil
	case isCard(c.Method):
		if !c.Card.complete() {
			return ErrIncompleteCard
		}

		return nil
	default:
		return ErrUnsupportedMethod
	}
}

type ChargeResult struct {
	ID           string       `json:"id"`
	Status       Status       `json:"status"`
	Amount       money.Amount `json:"amount"`
	PaidAmount   money.Amount `json:"paid_amount"`
	Method       string       `json:"payment_method"`
	PixQRCode    string       `json:"pix_qr_code,omitempty"`
	PixQRImage   string       `json:"pix_qr_image,omitempty"`
	PixExpiresAt *time.Time   `json:"pix_expiration_date,omitempty"`
	RefuseReason string       `json:"refuse_reason,omitempty"`
}

// Gateway is a payment provider. A refused charge is a result, not an error;
// errors mean the provider could not be asked.
type Gateway interface {
	CreateCharge(ctx context.Context, c Charge) (ChargeResult, error)
	ChargeStatus(ctx context.Context, id string) (ChargeResult, error)
}
