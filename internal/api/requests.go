package api

import (
	"bytes"
	"encoding/json"

	"github.com/fastprodman/anoncasino/internal/gateway"
	"github.com/fastprodman/anoncasino/internal/money"
)

// betRequest is decoded strictly; BetData is left raw and decoded leniently
// by outcome.ParseBetParams.
type betRequest struct {
	AnonID    string          `json:"anon_id" validate:"required"`
	GameType  string          `json:"game_type" validate:"required"`
	BetAmount money.Amount    `json:"bet_amount"`
	BetData   json.RawMessage `json:"bet_data"`
}

type depositRequest struct {
	AnonID        string         `json:"anon_id" validate:"required"`
	Amount        money.Amount   `json:"amount"`
	PaymentMethod string         `json:"payment_method"`
	ExternalRef   string         `json:"external_transaction_id" validate:"omitempty,max=255"`
	Metadata      map[string]any `json:"metadata"`
}

type withdrawRequest struct {
	AnonID        string       `json:"anon_id" validate:"required"`
	Amount        money.Amount `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
	Destination   string       `json:"destination" validate:"max=255"`
}

type closeGameRequest struct {
	AnonID string `json:"anon_id" validate:"required"`
}

type cardRequest struct {
	Number         string `json:"number"`
	HolderName     string `json:"holder_name"`
	ExpirationDate string `json:"expiration_date"`
	CVV            string `json:"cvv"`
}

type processPaymentRequest struct {
	AnonID        string       `json:"anon_id" validate:"required"`
	Amount        money.Amount `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
	CustomerName  string       `json:"customer_name" validate:"max=255"`
	CustomerEmail string       `json:"customer_email" validate:"omitempty,email"`
	CustomerCPF   string       `json:"customer_cpf" validate:"max=32"`
	Card          *cardRequest `json:"card"`
}

func (c *cardRequest) gateway() *gateway.Card {
	if c == nil {
		return nil
	}

	return &gateway.Card{
		Number:         c.Number,
		HolderName:     c.HolderName,
		ExpirationDate: c.ExpirationDate,
		CVV:            c.CVV,
	}
}

// chargeID accepts the gateway's charge id as a JSON string or number.
type chargeID string

func (c *chargeID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*c = chargeID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*c = chargeID(n.String())

	return nil
}

type webhookRequest struct {
	Event       string `json:"event"`
	Transaction struct {
		ID     chargeID       `json:"id" validate:"required"`
		Status gateway.Status `json:"status" validate:"required"`
	} `json:"transaction"`
}

type settingRequest struct {
	Value       string `json:"value"`
	Type        string `json:"type" validate:"omitempty,oneof=string number boolean json"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"max=50"`
	IsPublic    bool   `json:"is_public"`
}
