package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ReserveTx lock row produk, cek stok, lalu decrement kondisional.
// Jalan di dalam tx milik caller: kalau langkah berikutnya gagal,
// reservasi ikut ke-rollback (all-or-nothing).
func ReserveTx(ctx context.Context, tx pgx.Tx, productID string, qty int) (priceCents, newStock int, err error) {
	var stock int
	err = tx.QueryRow(ctx,
		`SELECT price_cents, stock FROM products WHERE id=$1 FOR UPDATE`,
		productID).Scan(&priceCents, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, err
	}
	if stock < qty {
		return 0, 0, ErrInsufficientStock
	}

	// decrement kondisional, bukan read-then-write
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now()
		 WHERE id=$1 AND stock >= $2`, productID, qty)
	if err != nil {
		return 0, 0, err
	}
	if ct.RowsAffected() != 1 {
		return 0, 0, ErrInsufficientStock
	}
	return priceCents, stock - qty, nil
}

// AdjustTx apply stock += delta (delta boleh negatif); gagal kalau
// hasilnya bakal negatif.
func AdjustTx(ctx context.Context, tx pgx.Tx, productID string, delta int) (newStock int, err error) {
	err = tx.QueryRow(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now()
		 WHERE id=$1 AND stock + $2 >= 0
		 RETURNING stock`, productID, delta).Scan(&newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		// row absen atau guard gagal; bedakan biar error-nya jujur
		var exists bool
		if err2 := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err2 != nil {
			return 0, err2
		}
		if !exists {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, err
	}
	return newStock, nil
}
