package products

import "encoding/json"

// Snapshot adalah potret JSON field produk yg disimpan di product_history
// (old_data/new_data). Field boleh absen; pembaca harus toleran — entry
// STOCK_UPDATE misalnya cuma bawa {"stock": n}.
type Snapshot struct {
	ID          string  `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int    `json:"price_cents,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
}

func SnapshotOf(p Product) Snapshot {
	return Snapshot{
		ID:          p.ID,
		Name:        &p.Name,
		Description: p.Description,
		PriceCents:  &p.PriceCents,
		Stock:       &p.Stock,
	}
}

func StockSnapshot(n int) Snapshot {
	return Snapshot{Stock: &n}
}

// Overlay nimpa field produk dgn nilai yg hadir di snapshot; field yg
// absen dibiarkan apa adanya.
func (s Snapshot) Overlay(p *Product) {
	if s.Name != nil {
		p.Name = *s.Name
	}
	if s.Description != nil {
		p.Description = s.Description
	}
	if s.PriceCents != nil {
		p.PriceCents = *s.PriceCents
	}
	if s.Stock != nil {
		p.Stock = *s.Stock
	}
}

// Complete true kalau snapshot cukup buat bikin ulang produk dari nol.
func (s Snapshot) Complete() bool {
	return s.Name != nil && s.PriceCents != nil && s.Stock != nil
}

func (s Snapshot) JSON() json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err) // struct statis, tidak mungkin gagal marshal
	}
	return b
}

func ParseSnapshot(raw json.RawMessage) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(raw, &s)
	return s, err
}
