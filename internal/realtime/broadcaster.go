package realtime

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-shop-payments.git/internal/events"
	"github.com/ariefcatur/go-shop-payments.git/internal/kafka"
)

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Broadcaster sebar perubahan stok ke topic product.stock.changed.
// Fire-and-forget: alur bisnis tidak nunggu, retry, atau verifikasi delivery.
type Broadcaster struct {
	Producer Publisher
	Name     string
}

func (b *Broadcaster) StockChanged(productID string, newStock int) {
	if b == nil || b.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventStockChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      b.Name,
		CorrelationID: productID,
		Payload: kafka.MustMarshal(events.StockChangedPayload{
			ProductID: productID,
			NewStock:  newStock,
		}),
	}
	b.Producer.Publish(events.PartitionKey(productID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventStockChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
