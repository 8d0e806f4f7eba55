package revert

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
)

// Repo implement Store di atas Postgres.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) Entry(ctx context.Context, id string) (*audit.Entry, error) {
	var e audit.Entry
	err := r.DB.QueryRow(ctx, `
		SELECT id, action, product_id, user_id, old_data, new_data, created_at
		FROM product_history WHERE id=$1`, id,
	).Scan(&e.ID, &e.Action, &e.ProductID, &e.UserID, &e.OldData, &e.NewData, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, audit.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RecreateProduct: insert + re-link harus satu tx — kalau re-link gagal,
// produk hasil recreate ikut batal.
func (r *Repo) RecreateProduct(ctx context.Context, entryID string, snap products.Snapshot) (*products.Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p := products.Product{ID: snap.ID}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	snap.Overlay(&p)

	err = tx.QueryRow(ctx, `
		INSERT INTO products(id, name, description, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// satu-satunya tulisan engine ini ke product_history
	if _, err := tx.Exec(ctx,
		`UPDATE product_history SET product_id=$2 WHERE id=$1`, entryID, p.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ProductExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

// DeleteProduct hapus row; FK on delete set null yg ngurus cascade ke
// product_history.
func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *Repo) RestoreProduct(ctx context.Context, id string, snap products.Snapshot) (*products.Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p products.Product
	err = tx.QueryRow(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products WHERE id=$1 FOR UPDATE`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// produk lenyap di antara lookup dan write
		return nil, products.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snap.Overlay(&p)
	err = tx.QueryRow(ctx, `
		UPDATE products SET name=$2, description=$3, price_cents=$4, stock=$5, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}
