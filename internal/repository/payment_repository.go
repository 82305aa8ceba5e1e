package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/minhvo/cafe-pos/internal/model"
)

// PaymentRepo records payments and performs the checkout transaction.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Finalize settles an open order in one transaction: it locks the
// order row, sums the current lines, inserts the payment, performs the
// Open -> Paid transition and frees the table. Either every step
// commits or none does, so a failed checkout leaves the order open and
// retryable.
//
// The UPDATE ... WHERE status = 'OPEN' is the serialization point for
// double submits: of N concurrent calls exactly one changes the row,
// the rest get ErrAlreadyPaid. The unique key on payments.order_id
// backs this up so a second payment row is impossible either way.
func (r *PaymentRepo) Finalize(ctx context.Context, orderID uint64, method string) (model.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Payment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		tableID uint64
		status  string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT table_id, status FROM orders WHERE id = ? FOR UPDATE`, orderID).
		Scan(&tableID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	if status != model.OrderOpen {
		return model.Payment{}, ErrAlreadyPaid
	}

	var (
		lineCount int
		total     int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM order_items WHERE order_id = ?`, orderID).
		Scan(&lineCount, &total)
	if err != nil {
		return model.Payment{}, err
	}
	if lineCount == 0 {
		return model.Payment{}, ErrEmptyOrder
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, open_table_id = NULL WHERE id = ? AND status = ?`,
		model.OrderPaid, orderID, model.OrderOpen)
	if err != nil {
		return model.Payment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Payment{}, ErrAlreadyPaid
	}

	paidAt := time.Now().UTC().Truncate(time.Second)
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO payments (order_id, method, paid_amount, paid_at) VALUES (?, ?, ?, ?)`,
		orderID, method, total, paidAt)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Payment{}, ErrAlreadyPaid
		}
		return model.Payment{}, err
	}
	payID, err := ins.LastInsertId()
	if err != nil {
		return model.Payment{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE cafe_tables SET status = ? WHERE id = ?`,
		model.TableEmpty, tableID); err != nil {
		return model.Payment{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Payment{}, err
	}
	committed = true
	return model.Payment{
		ID:         uint64(payID),
		OrderID:    orderID,
		Method:     method,
		PaidAmount: total,
		PaidAt:     paidAt,
	}, nil
}

// PaymentEntry is a payment joined with the table-name snapshot of its
// order, as shown on the daily history screen.
type PaymentEntry struct {
	model.Payment
	TableName string `json:"table_name"`
}

// ListSince returns payments recorded at or after the given instant,
// newest first.
func (r *PaymentRepo) ListSince(ctx context.Context, since time.Time) ([]PaymentEntry, error) {
	const q = `SELECT p.id, p.order_id, p.method, p.paid_amount, p.paid_at, o.table_name
	           FROM payments p
	           JOIN orders o ON o.id = p.order_id
	           WHERE p.paid_at >= ?
	           ORDER BY p.paid_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]PaymentEntry, 0)
	for rows.Next() {
		var e PaymentEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Method, &e.PaidAmount, &e.PaidAt, &e.TableName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByOrder returns the payment settled against an order, if any.
func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID uint64) (model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, method, paid_amount, paid_at FROM payments WHERE order_id = ?`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Method, &p.PaidAmount, &p.PaidAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrNotFound
	}
	return p, err
}
