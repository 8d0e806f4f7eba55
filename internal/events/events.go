package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventStockChanged   = "StockChanged"
	EventOrderFinalized = "OrderFinalized"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	AmountCents int    `json:"amount_cents"`
}

type StockChangedPayload struct {
	ProductID string `json:"product_id"`
	NewStock  int    `json:"new_stock"`
}

type OrderFinalizedPayload struct {
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id,omitempty"`
	FinalStatus string `json:"final_status"` // COMPLETED | FAILED
}
