package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-shop-payments.git/internal/mercadopago"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	HandleWebhook(ctx context.Context, n mercadopago.Notification) error
}

// GatewayProxy: endpoint pass-through ke gateway (form pembayaran di
// frontend yg make).
type GatewayProxy interface {
	IdentificationTypes(ctx context.Context) (json.RawMessage, error)
	Installments(ctx context.Context, bin string, amountCents int) (json.RawMessage, error)
	CreateCardToken(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
}

type PaymentsHandler struct {
	Service PaymentService
	Gateway GatewayProxy
}

// Register: subtree /mercadopago sengaja tanpa Identity — webhook datang
// dari gateway, bukan dari user ber-token.
func (h *PaymentsHandler) Register(r chi.Router) {
	r.Route("/mercadopago", func(r chi.Router) {
		r.Get("/identification_types", h.identificationTypes)
		r.Get("/installments/{first_six_digits}/{amount}", h.installments)
		r.Post("/card_token", h.createCardToken)
		r.Post("/payments", h.createPayment)
		r.Post("/webhook", h.webhook)
	})
}

func (h *PaymentsHandler) identificationTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	raw, err := h.Gateway.IdentificationTypes(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (h *PaymentsHandler) installments(w http.ResponseWriter, r *http.Request) {
	bin := chi.URLParam(r, "first_six_digits")
	amount, err := strconv.Atoi(chi.URLParam(r, "amount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	raw, err := h.Gateway.Installments(ctx, bin, amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (h *PaymentsHandler) createCardToken(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	raw, err := h.Gateway.CreateCardToken(ctx, body)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, raw)
}

func (h *PaymentsHandler) createPayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	raw, err := h.Service.CreatePayment(ctx, body)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, raw)
}

func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	var n mercadopago.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Service.HandleWebhook(ctx, n); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
