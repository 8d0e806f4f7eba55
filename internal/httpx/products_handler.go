package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/auth"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
	"github.com/ariefcatur/go-shop-payments.git/internal/revert"
)

type ProductStore interface {
	Create(ctx context.Context, in products.CreateInput, userID string) (*products.Product, error)
	Get(ctx context.Context, id string) (*products.Product, error)
	List(ctx context.Context) ([]products.Product, error)
	Update(ctx context.Context, id string, patch products.Snapshot, userID string) (*products.Product, error)
	Delete(ctx context.Context, id string, userID string) error
	AdjustStock(ctx context.Context, id string, delta int, userID string) (int, error)
}

type HistoryStore interface {
	History(ctx context.Context, productID string) ([]audit.HistoryRow, error)
	FullHistory(ctx context.Context) ([]audit.HistoryRow, error)
}

type Reverter interface {
	Revert(ctx context.Context, historyID string) (*revert.Result, error)
}

type StockBroadcaster interface {
	StockChanged(productID string, newStock int)
}

type ProductsHandler struct {
	Store     ProductStore
	History   HistoryStore
	Reverter  Reverter
	Broadcast StockBroadcaster
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Use(auth.Identity)

		r.With(auth.RequireRole("admin", "user")).Get("/", h.list)
		r.With(auth.RequireRole("admin", "user")).Get("/{id}", h.get)

		admin := r.With(auth.RequireRole("admin"))
		admin.Post("/", h.create)
		admin.Put("/{id}", h.update)
		admin.Delete("/{id}", h.remove)
		admin.Patch("/{id}/stock", h.adjustStock)
		admin.Get("/{id}/history", h.history)
		admin.Get("/history/all", h.fullHistory)
		admin.Post("/revert/{historyId}", h.revert)
	})
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in products.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.Name == "" || in.PriceCents < 0 || in.Stock < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	p, err := h.Store.Create(ctx, in, u.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch products.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	p, err := h.Store.Update(ctx, chi.URLParam(r, "id"), patch, u.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	id := chi.URLParam(r, "id")
	if err := h.Store.Delete(ctx, id, u.ID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (h *ProductsHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Change int `json:"change"` // {"change": -1} buat decrement
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, _ := auth.FromContext(ctx)
	id := chi.URLParam(r, "id")
	newStock, err := h.Store.AdjustStock(ctx, id, body.Change, u.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if h.Broadcast != nil {
		h.Broadcast.StockChanged(id, newStock)
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "stock": newStock})
}

func (h *ProductsHandler) history(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.History.History(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ProductsHandler) fullHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.History.FullHistory(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ProductsHandler) revert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reverter.Revert(ctx, chi.URLParam(r, "historyId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	// revert yg bikin ulang / nimpa produk juga geser stok
	if h.Broadcast != nil && res.Product != nil {
		h.Broadcast.StockChanged(res.Product.ID, res.Product.Stock)
	}
	writeJSON(w, http.StatusOK, res)
}
