package orders

// PaymentRequest: payload siap kirim ke gateway. Amount dalam cents,
// external_reference = order id.
type PaymentRequest struct {
	TransactionAmount int           `json:"transaction_amount"`
	ExternalReference string        `json:"external_reference"`
	Description       string        `json:"description"`
	Items             []PaymentItem `json:"items"`
}

type PaymentItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int    `json:"unit_price"` // cents, diturunkan dari amount/quantity
}
