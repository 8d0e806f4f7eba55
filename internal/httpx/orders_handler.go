package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-shop-payments.git/internal/auth"
	"github.com/ariefcatur/go-shop-payments.git/internal/events"
	kafkax "github.com/ariefcatur/go-shop-payments.git/internal/kafka"
	"github.com/ariefcatur/go-shop-payments.git/internal/orders"
	"github.com/ariefcatur/go-shop-payments.git/internal/redisx"
)

type OrderStore interface {
	CreateOrderTx(ctx context.Context, userID, productID string, qty int) (*orders.Order, int, error)
	GetForUser(ctx context.Context, userID, id string) (*orders.Order, error)
	ListForUser(ctx context.Context, userID string) ([]orders.Order, error)
	UpdateForUser(ctx context.Context, userID, id string, qty *int) (*orders.Order, error)
	DeleteForUser(ctx context.Context, userID, id string) error
	PreparePayment(ctx context.Context, orderID string) (*orders.PaymentRequest, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Store     OrderStore
	Redis     *redis.Client
	Producer  Publisher
	Broadcast StockBroadcaster
	Service   string
}

type CreateOrderReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.Identity)
		r.Use(auth.RequireRole("admin", "user"))

		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.getStatus)
		r.Get("/{id}/payment_request", h.preparePayment)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	o, newStock, err := h.Store.CreateOrderTx(ctx, u.ID, req.ProductID, req.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}

	// cache status (PENDING) biar GET status cepat
	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"PENDING"}`, redisx.TTLStatusCache).Err()
	}

	// broadcast stok + event order.created, dua-duanya fire-and-forget
	if h.Broadcast != nil {
		h.Broadcast.StockChanged(o.ProductID, newStock)
	}
	h.publishCreated(o, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	os, err := h.Store.ListForUser(ctx, u.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	o, err := h.Store.GetForUser(ctx, u.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus: cache dulu, fallback DB. Cache TTL pendek; transisi lewat
// webhook bisa bikin stale sebentar.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	u, _ := auth.FromContext(ctx)
	o, err := h.Store.GetForUser(ctx, u.ID, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	b, _ := json.Marshal(map[string]any{"status": o.Status})
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(b))
}

func (h *OrdersHandler) preparePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// verifikasi kepemilikan dulu; PreparePayment sendiri tidak scoped
	u, _ := auth.FromContext(ctx)
	o, err := h.Store.GetForUser(ctx, u.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	pr, err := h.Store.PreparePayment(ctx, o.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if body.Quantity != nil && *body.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	o, err := h.Store.UpdateForUser(ctx, u.ID, chi.URLParam(r, "id"), body.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteForUser(ctx, u.ID, id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (h *OrdersHandler) publishCreated(o *orders.Order, traceID string) {
	if h.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(events.OrderCreatedPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			ProductID:   o.ProductID,
			Quantity:    o.Quantity,
			AmountCents: o.AmountCents,
		}),
	}
	h.Producer.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
