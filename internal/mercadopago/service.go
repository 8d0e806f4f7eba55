package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-shop-payments.git/internal/events"
	"github.com/ariefcatur/go-shop-payments.git/internal/kafka"
	"github.com/ariefcatur/go-shop-payments.git/internal/orders"
)

var (
	ErrInvalidReference = errors.New("invalid order reference")
	ErrAlreadyProcessed = errors.New("order already processed")
	ErrAmountMismatch   = errors.New("amount does not match order")
)

// OrderStore: tulisan status dari saga; semuanya conditional di sisi store
// kecuali yg memang unconditional by design.
type OrderStore interface {
	PaymentView(ctx context.Context, id string) (*orders.PaymentView, error)
	MarkFailedIfPending(ctx context.Context, id string) error
	RecordPaymentResult(ctx context.Context, id, paymentID string, approved bool) error
	ApplyPaymentStatus(ctx context.Context, paymentID string, approved bool) (int64, error)
}

type Gateway interface {
	CreatePayment(ctx context.Context, body json.RawMessage, idempotencyKey string) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Orders    OrderStore
	Gateway   Gateway
	Finalized Publisher // boleh nil; event order.finalized fire-and-forget
	Name      string
}

type paymentRequest struct {
	TransactionAmount int    `json:"transaction_amount"`
	ExternalReference string `json:"external_reference"`
}

type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// CreatePayment jalanin saga sinkron: validasi order, submit ke gateway
// dgn satu idempotency key per invocation, lalu rekonsiliasi status.
// Return response mentah gateway.
func (s *Service) CreatePayment(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var req paymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	orderID, err := uuid.Parse(req.ExternalReference)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, req.ExternalReference)
	}

	view, err := s.Orders.PaymentView(ctx, orderID.String())
	if err != nil {
		return nil, err
	}
	if view.Status != orders.StatusPending {
		return nil, ErrAlreadyProcessed
	}
	// monto otoritatif = snapshot beku di order, bukan kiriman client
	if view.AmountCents != req.TransactionAmount {
		return nil, ErrAmountMismatch
	}

	// satu key per invocation; retry internal attempt yg sama wajib reuse,
	// jangan regenerate
	idempotencyKey := uuid.NewString()

	p, err := s.Gateway.CreatePayment(ctx, body, idempotencyKey)
	if err != nil {
		// kompensasi best-effort; gagal persist cuma di-log, errornya tetap
		// error gateway
		if cerr := s.Orders.MarkFailedIfPending(ctx, view.ID); cerr != nil {
			log.Printf("compensation failed for order %s: %v", view.ID, cerr)
		}
		return nil, err
	}

	if err := s.Orders.RecordPaymentResult(ctx, view.ID, p.ID.String(), p.Approved()); err != nil {
		return nil, err
	}
	s.publishFinalized(view.ID, p.ID.String(), p.Approved())
	return p.Raw, nil
}

// HandleWebhook aman dipanggil berapa kali pun utk notifikasi yg sama.
// Status diambil dari record kanonik di gateway, bukan dari body webhook.
func (s *Service) HandleWebhook(ctx context.Context, n Notification) error {
	if n.Type != "payment" {
		return nil
	}
	p, err := s.Gateway.GetPayment(ctx, n.Data.ID.String())
	if err != nil {
		return err
	}
	rows, err := s.Orders.ApplyPaymentStatus(ctx, p.ID.String(), p.Approved())
	if err != nil {
		return err
	}
	if rows > 0 {
		log.Printf("webhook payment %s applied to %d order(s)", p.ID.String(), rows)
	}
	return nil
}

func (s *Service) publishFinalized(orderID, paymentID string, approved bool) {
	if s.Finalized == nil {
		return
	}
	final := string(orders.StatusFailed)
	if approved {
		final = string(orders.StatusCompleted)
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderFinalized,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		CorrelationID: orderID,
		Payload: kafka.MustMarshal(events.OrderFinalizedPayload{
			OrderID:     orderID,
			PaymentID:   paymentID,
			FinalStatus: final,
		}),
	}
	s.Finalized.Publish(events.PartitionKey(orderID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderFinalized)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
