package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// RecordTx append satu entry di dalam tx milik caller, supaya history ikut
// rollback kalau operasi bisnisnya gagal. Paket ini satu-satunya penulis
// product_history; engine revert cuma baca (plus satu re-link via store-nya).
func RecordTx(ctx context.Context, tx pgx.Tx, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO product_history(id, action, product_id, user_id, old_data, new_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		e.ID, e.Action, e.ProductID, e.UserID, e.OldData, e.NewData,
	).Scan(&e.CreatedAt)
	return e, err
}

func (r *Repo) History(ctx context.Context, productID string) ([]HistoryRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT h.id, h.action, h.product_id, h.user_id, h.old_data, h.new_data, h.created_at,
		       u.email
		FROM product_history h
		JOIN users u ON u.id = h.user_id
		WHERE h.product_id = $1
		ORDER BY h.created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, false)
}

func (r *Repo) FullHistory(ctx context.Context) ([]HistoryRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT h.id, h.action, h.product_id, h.user_id, h.old_data, h.new_data, h.created_at,
		       u.email, p.name
		FROM product_history h
		JOIN users u ON u.id = h.user_id
		LEFT JOIN products p ON p.id = h.product_id
		ORDER BY h.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows, true)
}

func scanRows(rows pgx.Rows, withProduct bool) ([]HistoryRow, error) {
	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		dest := []any{&h.ID, &h.Action, &h.ProductID, &h.UserID, &h.OldData, &h.NewData, &h.CreatedAt, &h.UserEmail}
		if withProduct {
			dest = append(dest, &h.ProductName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
