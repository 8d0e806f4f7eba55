package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const PaymentStatusApproved = "approved"

// APIError bawa status + body mentah dari gateway apa adanya; boundary HTTP
// nerusin dua-duanya verbatim ke caller.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: upstream status %d", e.StatusCode)
}

// Payment: potongan response yg dipakai saga; Raw simpan response utuh.
type Payment struct {
	ID     json.Number     `json:"id"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"-"`
}

func (p *Payment) Approved() bool { return p.Status == PaymentStatusApproved }

type Client struct {
	BaseURL     string
	AccessToken string
	PublicKey   string
	HTTP        *http.Client
}

func NewClient(baseURL, accessToken, publicKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		PublicKey:   publicKey,
		HTTP:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) IdentificationTypes(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/v1/identification_types", nil, nil, "")
}

// Installments return elemen pertama dari array payment method yg dibalikin
// gateway.
func (c *Client) Installments(ctx context.Context, bin string, amountCents int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("bin", bin)
	q.Set("amount", strconv.Itoa(amountCents))
	raw, err := c.do(ctx, http.MethodGet, "/v1/payment_methods/installments", q, nil, "")
	if err != nil {
		return nil, err
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("decode installments: %w", err)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("no installments for bin %s", bin)
	}
	return arr[0], nil
}

func (c *Client) CreateCardToken(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("public_key", c.PublicKey)
	return c.do(ctx, http.MethodPost, "/v1/card_tokens", q, body, "")
}

// CreatePayment submit request dgn X-Idempotency-Key supaya retry gateway
// utk attempt logis yg sama ke-dedup.
func (c *Client) CreatePayment(ctx context.Context, body json.RawMessage, idempotencyKey string) (*Payment, error) {
	raw, err := c.do(ctx, http.MethodPost, "/v1/payments", nil, body, idempotencyKey)
	if err != nil {
		return nil, err
	}
	return parsePayment(raw)
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	raw, err := c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, nil, "")
	if err != nil {
		return nil, err
	}
	return parsePayment(raw)
}

func parsePayment(raw json.RawMessage) (*Payment, error) {
	var p Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	p.Raw = raw
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body json.RawMessage, idempotencyKey string) (json.RawMessage, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: b}
	}
	return b, nil
}
