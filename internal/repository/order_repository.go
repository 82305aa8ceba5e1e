package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minhvo/cafe-pos/internal/model"
)

// OrderRepo persists orders. The one-open-order-per-table invariant is
// not checked in Go code; it lives in the UNIQUE(open_table_id) key, so
// the database itself picks the single winner among concurrent
// InsertOpen calls.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, table_id, table_name, status, created_at`

func scanOrder(row *sql.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.TableID, &o.TableName, &o.Status, &o.CreatedAt)
	return o, err
}

// InsertOpen attempts to create the open order for a table, writing
// open_table_id = tableID so the unique key arbitrates concurrent
// attempts. The loser of the race gets ErrConflict and should re-read
// with FindOpen. tableName is snapshotted onto the order.
func (r *OrderRepo) InsertOpen(ctx context.Context, tableID uint64, tableName string) (model.Order, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (table_id, table_name, status, open_table_id) VALUES (?, ?, ?, ?)`,
		tableID, tableName, model.OrderOpen, tableID)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Order{}, ErrConflict
		}
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	return r.Get(ctx, uint64(id))
}

// FindOpen returns the table's current open order. The second return
// value is false when the table has no open order; that is not an
// error.
func (r *OrderRepo) FindOpen(ctx context.Context, tableID uint64) (model.Order, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE open_table_id = ?`, tableID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

// Get fetches an order by ID, returning ErrNotFound when absent.
func (r *OrderRepo) Get(ctx context.Context, id uint64) (model.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	return o, err
}
