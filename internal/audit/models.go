package audit

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrEntryNotFound = errors.New("history entry not found")

const (
	ActionCreate      = "CREATE"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
	ActionStockUpdate = "STOCK_UPDATE"
)

// Entry append-only; tidak pernah diubah kecuali re-link product_id saat
// produk yg dihapus dibikin ulang lewat revert.
type Entry struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	ProductID *string         `json:"product_id"` // null = produknya sudah tidak ada
	UserID    string          `json:"user_id"`
	OldData   json.RawMessage `json:"old_data,omitempty"`
	NewData   json.RawMessage `json:"new_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// HistoryRow = Entry plus identitas actor (dan nama produk di full history).
type HistoryRow struct {
	Entry
	UserEmail   string  `json:"user_email"`
	ProductName *string `json:"product_name,omitempty"`
}
