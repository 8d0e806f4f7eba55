package revert

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
)

var ErrCannotRevert = errors.New("this action cannot be reverted")

type Result struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Product   *products.Product `json:"product,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
}

// Store: tiap method transaksional sendiri; Reverter cuma klasifikasi.
type Store interface {
	Entry(ctx context.Context, id string) (*audit.Entry, error)
	// RecreateProduct insert produk dari snapshot + re-link product_id
	// entry-nya, satu tx.
	RecreateProduct(ctx context.Context, entryID string, snap products.Snapshot) (*products.Product, error)
	ProductExists(ctx context.Context, id string) (bool, error)
	DeleteProduct(ctx context.Context, id string) error
	// RestoreProduct overlay snapshot ke row di bawah lock.
	RestoreProduct(ctx context.Context, id string, snap products.Snapshot) (*products.Product, error)
}

type Reverter struct{ Store Store }

// Revert klasifikasi entry di dua sumbu: (product_id null) x action.
func (r *Reverter) Revert(ctx context.Context, historyID string) (*Result, error) {
	e, err := r.Store.Entry(ctx, historyID)
	if err != nil {
		return nil, err
	}

	if e.ProductID == nil {
		if e.Action == audit.ActionDelete && e.OldData != nil {
			return r.recreate(ctx, e)
		}
		return nil, fmt.Errorf("%w: product was deleted and this entry is not its deletion record", ErrCannotRevert)
	}

	switch e.Action {
	case audit.ActionCreate:
		return r.undoCreate(ctx, *e.ProductID)
	case audit.ActionUpdate:
		if e.OldData == nil {
			return nil, fmt.Errorf("%w: no prior snapshot on this entry", ErrCannotRevert)
		}
		return r.restore(ctx, e)
	}
	return nil, ErrCannotRevert
}

func (r *Reverter) recreate(ctx context.Context, e *audit.Entry) (*Result, error) {
	snap, err := products.ParseSnapshot(e.OldData)
	if err != nil {
		return nil, fmt.Errorf("%w: bad snapshot: %v", ErrCannotRevert, err)
	}
	if !snap.Complete() {
		return nil, fmt.Errorf("%w: snapshot is not a full product state", ErrCannotRevert)
	}
	p, err := r.Store.RecreateProduct(ctx, e.ID, snap)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: "deleted product was recreated", Product: p}, nil
}

// undoCreate: revert dari CREATE = hapus produknya sekarang. Kalau sudah
// hilang, itu sukses yg idempotent, bukan error.
func (r *Reverter) undoCreate(ctx context.Context, productID string) (*Result, error) {
	exists, err := r.Store.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &Result{Success: false, Message: "product already absent, revert considered applied", ProductID: productID}, nil
	}
	if err := r.Store.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			// keburu dihapus di antara cek dan delete
			return &Result{Success: false, Message: "product already absent, revert considered applied", ProductID: productID}, nil
		}
		return nil, err
	}
	return &Result{Success: true, Message: "product deleted, history preserved", ProductID: productID}, nil
}

func (r *Reverter) restore(ctx context.Context, e *audit.Entry) (*Result, error) {
	snap, err := products.ParseSnapshot(e.OldData)
	if err != nil {
		return nil, fmt.Errorf("%w: bad snapshot: %v", ErrCannotRevert, err)
	}
	p, err := r.Store.RestoreProduct(ctx, *e.ProductID, snap)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: "product changes were reverted", Product: p}, nil
}
