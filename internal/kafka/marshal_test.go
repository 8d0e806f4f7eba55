package kafka

import (
	"encoding/json"
	"testing"

	"github.com/ariefcatur/go-shop-payments.git/internal/events"
)

func TestUnwrapPayload(t *testing.T) {
	ev := events.Envelope{
		EventType: events.EventStockChanged,
		Payload:   MustMarshal(events.StockChangedPayload{ProductID: "p1", NewStock: 4}),
	}

	b := MustMarshal(ev)
	var decoded events.Envelope
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}

	p, err := UnwrapPayload[events.StockChangedPayload](decoded.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if p.ProductID != "p1" || p.NewStock != 4 {
		t.Fatalf("payload = %+v", p)
	}
}

func TestUnwrapPayloadBadJSON(t *testing.T) {
	if _, err := UnwrapPayload[events.StockChangedPayload](json.RawMessage(`{`)); err == nil {
		t.Fatal("want decode error")
	}
}
