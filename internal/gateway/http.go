package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fastprodman/anoncasino/internal/config"
	"github.com/fastprodman/anoncasino/internal/money"
)

var _ Gateway = (*HTTPClient)(nil)

const maxErrorBody = 512

// HTTPClient speaks the provider's JSON API. Amounts go over the wire in
// cents and the API key is sent as the basic-auth user.
type HTTPClient struct {
	base   *url.URL
	apiKey string
	hc     *http.Client
}

func NewHTTPClient(cfg config.GatewayConfig) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid gateway base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		base:   base,
		apiKey: cfg.APIKey,
		hc:     &http.Client{Timeout: timeout},
	}, nil
}

type wireCharge struct {
	Amount        int64             `json:"amount"`
	PaymentMethod string            `json:"payment_method"`
	Card          *Card             `json:"card,omitempty"`
	Customer      Customer          `json:"customer"`
	Metadata      map[string]string `json:"metadata"`
}

type wireResult struct {
	ID                string     `json:"id"`
	Status            Status     `json:"status"`
	Amount            int64      `json:"amount"`
	PaidAmount        int64      `json:"paid_amount"`
	PaymentMethod     string     `json:"payment_method"`
	PixQRCode         string     `json:"pix_qr_code"`
	PixExpirationDate *time.Time `json:"pix_expiration_date"`
	RefuseReason      string     `json:"refuse_reason"`
}

func (w wireResult) result() ChargeResult {
	return ChargeResult{
		ID:           w.ID,
		Status:       w.Status,
		Amount:       money.Amount(w.Amount),
		PaidAmount:   money.Amount(w.PaidAmount),
		Method:       w.PaymentMethod,
		PixQRCode:    w.PixQRCode,
		PixExpiresAt: w.PixExpirationDate,
		RefuseReason: w.RefuseReason,
	}
}

func (c *HTTPClient) CreateCharge(ctx context.Context, ch Charge) (ChargeResult, error) {
	err := ch.Validate()
	if err != nil {
		return ChargeResult{}, err
	}

	body, err := json.Marshal(wireCharge{
		Amount:        int64(ch.Amount),
		PaymentMethod: ch.Method,
		Card:          ch.Card,
		Customer:      ch.Customer,
		Metadata:      map[string]string{"casino_session": ch.Customer.SessionID, "deposit_type": ch.Method},
	})
	if err != nil {
		return ChargeResult{}, fmt.Errorf("encode charge: %w", err)
	}

	var out wireResult

	err = c.do(ctx, http.MethodPost, "transactions", bytes.NewReader(body), &out)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("create charge: %w", err)
	}

	return out.result(), nil
}

func (c *HTTPClient) ChargeStatus(ctx context.Context, id string) (ChargeResult, error) {
	var out wireResult

	err := c.do(ctx, http.MethodGet, "transactions/"+url.PathEscape(id), nil, &out)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("charge status: %w", err)
	}

	return out.result(), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrChargeNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s: %s", ErrGateway, resp.Status, strings.TrimSpace(string(msg)))
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrGateway, err)
	}

	return nil
}
