package orders

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	PaymentID   *string   `json:"payment_id,omitempty"`
	Status      Status    `json:"status"`
	AmountCents int       `json:"amount_cents"` // snapshot beku saat create, tidak pernah dihitung ulang
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PaymentView: proyeksi minimum yg dibutuhkan saga pembayaran.
type PaymentView struct {
	ID          string
	AmountCents int
	Status      Status
}
