package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

var _ Gateway = (*Sandbox)(nil)

const (
	pixTTL      = 30 * time.Minute
	qrImageSize = 256
)

// Sandbox is an in-process provider for development. Cards are paid at once
// unless the number ends in 0000, which is refused. PIX charges wait for
// payment until MarkPaid is called.
type Sandbox struct {
	mu      sync.Mutex
	charges map[string]ChargeResult
	now     func() time.Time
}

func NewSandbox() *Sandbox {
	return &Sandbox{charges: make(map[string]ChargeResult), now: time.Now}
}

func (s *Sandbox) CreateCharge(_ context.Context, ch Charge) (ChargeResult, error) {
	err := ch.Validate()
	if err != nil {
		return ChargeResult{}, err
	}

	res := ChargeResult{
		ID:     "sbx_" + uuid.NewString(),
		Amount: ch.Amount,
		Method: ch.Method,
	}

	switch {
	case ch.Method == MethodPix:
		code := fmt.Sprintf("PIX|%s|%s|%s", res.ID, ch.Customer.SessionID, ch.Amount)

		png, err := qrcode.Encode(code, qrcode.Medium, qrImageSize)
		if err != nil {
			return ChargeResult{}, fmt.Errorf("render pix qr code: %w", err)
		}

		expires := s.now().Add(pixTTL)
		res.Status = StatusWaitingPayment
		res.PixQRCode = code
		res.PixQRImage = base64.StdEncoding.EncodeToString(png)
		res.PixExpiresAt = &expires
	case strings.HasSuffix(ch.Card.Number, "0000"):
		res.Status = StatusRefused
		res.RefuseReason = "card declined"
	default:
		res.Status = StatusPaid
		res.PaidAmount = ch.Amount
	}

	s.mu.Lock()
	s.charges[res.ID] = res
	s.mu.Unlock()

	return res, nil
}

func (s *Sandbox) ChargeStatus(_ context.Context, id string) (ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.charges[id]
	if !ok {
		return ChargeResult{}, ErrChargeNotFound
	}

	if res.Status == StatusWaitingPayment && res.PixExpiresAt != nil && s.now().After(*res.PixExpiresAt) {
		res.Status = StatusFailed
		s.charges[id] = res
	}

	return res, nil
}

// MarkPaid settles a waiting charge, as if the customer had paid it.
func (s *Sandbox) MarkPaid(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.charges[id]
	if !ok {
		return ErrChargeNotFound
	}

	res.Status = StatusPaid
	res.PaidAmount = res.Amount
	s.charges[id] = res

	return nil
}
