package products

import (
	"encoding/json"
	"testing"
)

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func TestOverlayFull(t *testing.T) {
	p := Product{ID: "p1", Name: "old", PriceCents: 100, Stock: 5}
	snap := Snapshot{
		Name:        strptr("new"),
		Description: strptr("desc"),
		PriceCents:  intptr(250),
		Stock:       intptr(9),
	}
	snap.Overlay(&p)

	if p.Name != "new" || p.PriceCents != 250 || p.Stock != 9 {
		t.Fatalf("overlay result %+v", p)
	}
	if p.Description == nil || *p.Description != "desc" {
		t.Fatalf("description = %v", p.Description)
	}
}

func TestOverlayToleratesMissingFields(t *testing.T) {
	desc := "keep me"
	p := Product{ID: "p1", Name: "keep", Description: &desc, PriceCents: 100, Stock: 5}

	// snapshot parsial, cuma stok — field lain harus utuh
	var snap Snapshot
	if err := json.Unmarshal([]byte(`{"stock":2}`), &snap); err != nil {
		t.Fatal(err)
	}
	snap.Overlay(&p)

	if p.Stock != 2 {
		t.Errorf("stock = %d, want 2", p.Stock)
	}
	if p.Name != "keep" || p.PriceCents != 100 || p.Description == nil || *p.Description != "keep me" {
		t.Errorf("untouched fields changed: %+v", p)
	}
}

func TestComplete(t *testing.T) {
	full := SnapshotOf(Product{Name: "x", PriceCents: 1, Stock: 0})
	if !full.Complete() {
		t.Error("full snapshot must be complete")
	}
	if StockSnapshot(3).Complete() {
		t.Error("stock-only snapshot must not be complete")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := Product{ID: "p1", Name: "widget", PriceCents: 1500, Stock: 7}
	got, err := ParseSnapshot(SnapshotOf(p).JSON())
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "p1" || *got.Name != "widget" || *got.PriceCents != 1500 || *got.Stock != 7 {
		t.Fatalf("round trip = %+v", got)
	}
	if got.Description != nil {
		t.Errorf("nil description must stay absent, got %v", *got.Description)
	}
}

func TestStockSnapshotJSON(t *testing.T) {
	b := StockSnapshot(4).JSON()
	if string(b) != `{"stock":4}` {
		t.Fatalf("json = %s", b)
	}
}
