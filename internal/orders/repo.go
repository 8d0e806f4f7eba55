package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx: satu unit atomik — reserve stok (lock + decrement
// kondisional), amount = harga x qty dari DB (hindari trust dari client),
// insert order PENDING, append entry STOCK_UPDATE. Gagal di mana pun ->
// tidak ada order, mutasi stok, atau row history yg ke-commit.
func (r *Repo) CreateOrderTx(ctx context.Context, userID, productID string, qty int) (*Order, int, error) {
	if qty <= 0 {
		return nil, 0, fmt.Errorf("invalid qty %d", qty)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	price, newStock, err := products.ReserveTx(ctx, tx, productID, qty)
	if err != nil {
		return nil, 0, err
	}

	o := Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		Status:      StatusPending,
		AmountCents: price * qty,
		Quantity:    qty,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, product_id, status, amount_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ProductID, o.Status, o.AmountCents, o.Quantity,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, 0, err
	}

	if _, err := audit.RecordTx(ctx, tx, audit.Entry{
		Action:    audit.ActionStockUpdate,
		ProductID: &productID,
		UserID:    userID,
		OldData:   products.StockSnapshot(newStock + qty).JSON(),
		NewData:   products.StockSnapshot(newStock).JSON(),
	}); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return &o, newStock, nil
}

const orderCols = `id, user_id, product_id, payment_id, status, amount_cents, quantity, created_at, updated_at`

// GetForUser di-scope ketat ke owner; order milik user lain kebaca absen.
func (r *Repo) GetForUser(ctx context.Context, userID, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 AND user_id=$2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+orderCols+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateForUser: patch tipis, cuma quantity. Amount tetap beku.
func (r *Repo) UpdateForUser(ctx context.Context, userID, id string, qty *int) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		UPDATE orders SET quantity = COALESCE($3, quantity), updated_at = now()
		WHERE id=$1 AND user_id=$2
		RETURNING `+orderCols, id, userID, qty))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *Repo) DeleteForUser(ctx context.Context, userID, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus tulis tanpa guard; khusus internal saga. Caller lain jangan
// pakai ini — lewat sini guard transisi PENDING-only ke-bypass.
func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) PaymentView(ctx context.Context, id string) (*PaymentView, error) {
	var v PaymentView
	err := r.DB.QueryRow(ctx,
		`SELECT id, amount_cents, status FROM orders WHERE id=$1`, id,
	).Scan(&v.ID, &v.AmountCents, &v.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkFailedIfPending: aksi kompensasi saga. Order yg sudah terminal tidak
// disentuh; no-op itu sukses.
func (r *Repo) MarkFailedIfPending(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3`, id, StatusFailed, StatusPending)
	return err
}

// RecordPaymentResult simpan payment_id + status terminal, guarded
// status=PENDING. Kalau webhook keburu duluan, update ini jadi no-op.
func (r *Repo) RecordPaymentResult(ctx context.Context, id, paymentID string, approved bool) error {
	status := StatusFailed
	if approved {
		status = StatusCompleted
	}
	_, err := r.DB.Exec(ctx, `
		UPDATE orders SET payment_id=$2, status=$3, updated_at=now()
		WHERE id=$1 AND status=$4`, id, paymentID, status, StatusPending)
	return err
}

// ApplyPaymentStatus: jalur webhook. Update semua order dgn payment_id itu,
// guarded PENDING — redelivery berapa kali pun aman.
func (r *Repo) ApplyPaymentStatus(ctx context.Context, paymentID string, approved bool) (int64, error) {
	status := StatusFailed
	if approved {
		status = StatusCompleted
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE payment_id=$1 AND status=$3`, paymentID, status, StatusPending)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// PreparePayment proyeksikan order + nama produknya jadi payload request
// pembayaran. Unit price diturunkan dari amount beku, bukan harga produk
// sekarang.
func (r *Repo) PreparePayment(ctx context.Context, orderID string) (*PaymentRequest, error) {
	var (
		o    Order
		name string
		desc *string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.product_id, o.amount_cents, o.quantity, p.name, p.description
		FROM orders o JOIN products p ON p.id = o.product_id
		WHERE o.id=$1`, orderID,
	).Scan(&o.ID, &o.ProductID, &o.AmountCents, &o.Quantity, &name, &desc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d := ""
	if desc != nil {
		d = *desc
	}
	return &PaymentRequest{
		TransactionAmount: o.AmountCents,
		ExternalReference: o.ID,
		Description:       "Purchase of " + name,
		Items: []PaymentItem{{
			ID:          o.ProductID,
			Title:       name,
			Description: d,
			Quantity:    o.Quantity,
			UnitPrice:   o.AmountCents / o.Quantity,
		}},
	}, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.PaymentID, &o.Status,
		&o.AmountCents, &o.Quantity, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
