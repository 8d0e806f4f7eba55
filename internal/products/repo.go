package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
)

type Repo struct{ DB *pgxpool.Pool }

// Create insert produk + entry history CREATE dalam satu tx.
func (r *Repo) Create(ctx context.Context, in CreateInput, userID string) (*Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO products(id, name, description, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := audit.RecordTx(ctx, tx, audit.Entry{
		Action:    audit.ActionCreate,
		ProductID: &p.ID,
		UserID:    userID,
		NewData:   SnapshotOf(p).JSON(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update nimpa field yg hadir di patch + entry history UPDATE dgn snapshot
// sebelum/sesudah, satu tx.
func (r *Repo) Update(ctx context.Context, id string, patch Snapshot, userID string) (*Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := lockProduct(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	next := *old
	patch.Overlay(&next)
	err = tx.QueryRow(ctx, `
		UPDATE products SET name=$2, description=$3, price_cents=$4, stock=$5, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		id, next.Name, next.Description, next.PriceCents, next.Stock,
	).Scan(&next.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := audit.RecordTx(ctx, tx, audit.Entry{
		Action:    audit.ActionUpdate,
		ProductID: &id,
		UserID:    userID,
		OldData:   SnapshotOf(*old).JSON(),
		NewData:   SnapshotOf(next).JSON(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &next, nil
}

// Delete catat entry DELETE (snapshot penuh di old_data) lalu hapus row;
// FK on delete set null yg nge-null-in product_id di semua row history,
// termasuk entry yg baru ditulis.
func (r *Repo) Delete(ctx context.Context, id string, userID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := lockProduct(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := audit.RecordTx(ctx, tx, audit.Entry{
		Action:    audit.ActionDelete,
		ProductID: &id,
		UserID:    userID,
		OldData:   SnapshotOf(*old).JSON(),
	}); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AdjustStock apply delta kondisional + entry STOCK_UPDATE, satu tx.
// Return stok baru buat broadcast.
func (r *Repo) AdjustStock(ctx context.Context, id string, delta int, userID string) (newStock int, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newStock, err = AdjustTx(ctx, tx, id, delta)
	if err != nil {
		return 0, err
	}

	if _, err := audit.RecordTx(ctx, tx, audit.Entry{
		Action:    audit.ActionStockUpdate,
		ProductID: &id,
		UserID:    userID,
		OldData:   StockSnapshot(newStock - delta).JSON(),
		NewData:   StockSnapshot(newStock).JSON(),
	}); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newStock, nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, id string) (*Product, error) {
	var p Product
	err := tx.QueryRow(ctx, `
		SELECT id, name, description, price_cents, stock, created_at, updated_at
		FROM products WHERE id=$1 FOR UPDATE`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
