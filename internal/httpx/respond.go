package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/mercadopago"
	"github.com/ariefcatur/go-shop-payments.git/internal/orders"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
	"github.com/ariefcatur/go-shop-payments.git/internal/revert"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr map taxonomy error domain ke status HTTP. Error gateway
// diterusin verbatim (status + body); internal error cuma pesan generik,
// detailnya ke log.
func writeErr(w http.ResponseWriter, err error) {
	var apiErr *mercadopago.APIError
	switch {
	case errors.Is(err, products.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, audit.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, products.ErrInsufficientStock),
		errors.Is(err, revert.ErrCannotRevert),
		errors.Is(err, mercadopago.ErrAlreadyProcessed),
		errors.Is(err, mercadopago.ErrAmountMismatch):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, mercadopago.ErrInvalidReference):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &apiErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apiErr.StatusCode)
		_, _ = w.Write(apiErr.Body)
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
