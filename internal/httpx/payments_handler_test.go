package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-shop-payments.git/internal/mercadopago"
)

func newPaymentsRouter(h *PaymentsHandler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestPaymentsEndpointsArePublic(t *testing.T) {
	svc := &mockPaymentService{
		HandleWebhookFunc: func(ctx context.Context, n mercadopago.Notification) error { return nil },
	}
	h := &PaymentsHandler{Service: svc}

	// tanpa header identity sama sekali
	rec := doReq(t, newPaymentsRouter(h), http.MethodPost, "/mercadopago/webhook",
		`{"type":"payment","data":{"id":42}}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var got map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !got["ok"] {
		t.Fatalf("body = %v", got)
	}
}

func TestPaymentsCreatePassesBodyThrough(t *testing.T) {
	body := `{"transaction_amount":3000,"external_reference":"o1","token":"tok_1"}`
	svc := &mockPaymentService{
		CreatePaymentFunc: func(ctx context.Context, b json.RawMessage) (json.RawMessage, error) {
			if string(b) != body {
				t.Errorf("body = %s", b)
			}
			return json.RawMessage(`{"id":42,"status":"approved"}`), nil
		},
	}
	h := &PaymentsHandler{Service: svc}

	rec := doReq(t, newPaymentsRouter(h), http.MethodPost, "/mercadopago/payments", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != `{"id":42,"status":"approved"}`+"\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestPaymentsCreateEmptyBody(t *testing.T) {
	h := &PaymentsHandler{Service: &mockPaymentService{}}
	rec := doReq(t, newPaymentsRouter(h), http.MethodPost, "/mercadopago/payments", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPaymentsCreateGatewayErrorPassthrough(t *testing.T) {
	svc := &mockPaymentService{
		CreatePaymentFunc: func(ctx context.Context, b json.RawMessage) (json.RawMessage, error) {
			return nil, &mercadopago.APIError{
				StatusCode: http.StatusPaymentRequired,
				Body:       json.RawMessage(`{"message":"cc_rejected_insufficient_amount"}`),
			}
		},
	}
	h := &PaymentsHandler{Service: svc}

	rec := doReq(t, newPaymentsRouter(h), http.MethodPost, "/mercadopago/payments", `{"token":"t"}`, "")
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
	if rec.Body.String() != `{"message":"cc_rejected_insufficient_amount"}` {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestPaymentsCreateTaxonomyMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{mercadopago.ErrInvalidReference, http.StatusBadRequest},
		{mercadopago.ErrAlreadyProcessed, http.StatusConflict},
		{mercadopago.ErrAmountMismatch, http.StatusConflict},
	}
	for _, tc := range cases {
		svc := &mockPaymentService{
			CreatePaymentFunc: func(ctx context.Context, b json.RawMessage) (json.RawMessage, error) {
				return nil, tc.err
			},
		}
		h := &PaymentsHandler{Service: svc}
		rec := doReq(t, newPaymentsRouter(h), http.MethodPost, "/mercadopago/payments", `{"token":"t"}`, "")
		if rec.Code != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestPaymentsInstallmentsParsesParams(t *testing.T) {
	gw := &mockGatewayProxy{
		InstallmentsFunc: func(ctx context.Context, bin string, amountCents int) (json.RawMessage, error) {
			if bin != "450995" || amountCents != 3000 {
				t.Errorf("installments(%s, %d)", bin, amountCents)
			}
			return json.RawMessage(`{"payment_method_id":"visa"}`), nil
		},
	}
	h := &PaymentsHandler{Gateway: gw}

	rec := doReq(t, newPaymentsRouter(h), http.MethodGet, "/mercadopago/installments/450995/3000", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPaymentsInstallmentsBadAmount(t *testing.T) {
	h := &PaymentsHandler{Gateway: &mockGatewayProxy{}}
	rec := doReq(t, newPaymentsRouter(h), http.MethodGet, "/mercadopago/installments/450995/abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPaymentsWebhookInvalidJSON(t *testing.T) {
	h := &PaymentsHandler{Service: &mockPaymentService{}}
	rec := doReq(t, newPaymentsRouter(h), http.MethodPost, "/mercadopago/webhook", `nope`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
