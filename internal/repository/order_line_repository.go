package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minhvo/cafe-pos/internal/model"
)

// OrderLineRepo persists the line items of an order. Merging repeated
// additions of the same item happens in a single atomic statement
// against the UNIQUE(order_id, item_id) key, so two devices tapping
// the same item at once can never create two qty=1 rows.
type OrderLineRepo struct {
	db *sql.DB
}

// NewOrderLineRepo constructs an OrderLineRepo bound to the given
// database.
func NewOrderLineRepo(db *sql.DB) *OrderLineRepo { return &OrderLineRepo{db: db} }

const lineColumns = `id, order_id, item_id, item_name, unit_price, qty, amount`

// UpsertIncrement adds one unit of an item to an order: the first call
// inserts a qty=1 line, later calls increment qty and rewrite amount.
// The INSERT sources its row from the orders table filtered on status
// OPEN, so adding to a missing or already-paid order affects zero rows
// and returns ErrNotFound instead of editing history. MySQL applies
// the ON DUPLICATE KEY assignments left to right, which lets amount
// read the already-incremented qty.
func (r *OrderLineRepo) UpsertIncrement(ctx context.Context, orderID, itemID uint64, itemName string, unitPrice int64) (model.OrderLine, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO order_items (order_id, item_id, item_name, unit_price, qty, amount)
		 SELECT o.id, ?, ?, ?, 1, ? FROM orders o WHERE o.id = ? AND o.status = ?
		 ON DUPLICATE KEY UPDATE qty = qty + 1, amount = unit_price * qty`,
		itemID, itemName, unitPrice, unitPrice, orderID, model.OrderOpen)
	if err != nil {
		return model.OrderLine{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.OrderLine{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM order_items WHERE order_id = ? AND item_id = ?`,
		orderID, itemID)
	return scanLine(row)
}

// Adjust applies a quantity delta to one line under a row lock. When
// the new quantity drops to zero or below the line is deleted and
// deleted=true is returned. ErrNotFound means the line no longer
// exists, typically because a concurrent decrement already removed it.
func (r *OrderLineRepo) Adjust(ctx context.Context, lineID uint64, delta int64) (model.OrderLine, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.OrderLine{}, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ln model.OrderLine
	err = tx.QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM order_items WHERE id = ? FOR UPDATE`, lineID).
		Scan(&ln.ID, &ln.OrderID, &ln.ItemID, &ln.ItemName, &ln.UnitPrice, &ln.Quantity, &ln.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OrderLine{}, false, ErrNotFound
	}
	if err != nil {
		return model.OrderLine{}, false, err
	}

	newQty := ln.Quantity + delta
	if newQty <= 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = ?`, lineID); err != nil {
			return model.OrderLine{}, false, err
		}
		if err := tx.Commit(); err != nil {
			return model.OrderLine{}, false, err
		}
		committed = true
		return model.OrderLine{}, true, nil
	}

	ln.Quantity = newQty
	ln.Amount = ln.UnitPrice * newQty
	if _, err := tx.ExecContext(ctx,
		`UPDATE order_items SET qty = ?, amount = ? WHERE id = ?`,
		ln.Quantity, ln.Amount, lineID); err != nil {
		return model.OrderLine{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return model.OrderLine{}, false, err
	}
	committed = true
	return ln, false, nil
}

// ListByOrder returns the current lines of an order sorted by item
// name, matching how the register screen lists them.
func (r *OrderLineRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lineColumns+` FROM order_items WHERE order_id = ? ORDER BY item_name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.OrderLine, 0)
	for rows.Next() {
		var ln model.OrderLine
		if err := rows.Scan(&ln.ID, &ln.OrderID, &ln.ItemID, &ln.ItemName, &ln.UnitPrice, &ln.Quantity, &ln.Amount); err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

func scanLine(row *sql.Row) (model.OrderLine, error) {
	var ln model.OrderLine
	err := row.Scan(&ln.ID, &ln.OrderID, &ln.ItemID, &ln.ItemName, &ln.UnitPrice, &ln.Quantity, &ln.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OrderLine{}, ErrNotFound
	}
	return ln, err
}
