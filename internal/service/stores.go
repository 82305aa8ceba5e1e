package service

import (
	"context"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// The store interfaces cover exactly the conditional writes the
// lifecycle needs. Implementations must make each method atomic on its
// own (unique keys, row locks or a transaction); the services never
// compose a check-then-act sequence out of them for invariant-carrying
// writes. Errors use the repository sentinels.

// TableStore reads tables and flips their status flag.
type TableStore interface {
	Get(ctx context.Context, id uint64) (model.Table, error)
	SetStatus(ctx context.Context, id uint64, status string) error
}

// OrderStore creates and looks up orders. InsertOpen must fail with
// repository.ErrConflict when the table already has an open order.
type OrderStore interface {
	InsertOpen(ctx context.Context, tableID uint64, tableName string) (model.Order, error)
	FindOpen(ctx context.Context, tableID uint64) (model.Order, bool, error)
	Get(ctx context.Context, id uint64) (model.Order, error)
}

// LineStore mutates and reads order lines. UpsertIncrement must merge
// concurrent additions of the same item into one row atomically.
type LineStore interface {
	UpsertIncrement(ctx context.Context, orderID, itemID uint64, itemName string, unitPrice int64) (model.OrderLine, error)
	Adjust(ctx context.Context, lineID uint64, delta int64) (model.OrderLine, bool, error)
	ListByOrder(ctx context.Context, orderID uint64) ([]model.OrderLine, error)
}

// CheckoutStore performs the all-or-nothing checkout transaction.
type CheckoutStore interface {
	Finalize(ctx context.Context, orderID uint64, method string) (model.Payment, error)
}

// The MySQL repositories are the production implementations.
var (
	_ TableStore    = (*repository.TableRepo)(nil)
	_ OrderStore    = (*repository.OrderRepo)(nil)
	_ LineStore     = (*repository.OrderLineRepo)(nil)
	_ CheckoutStore = (*repository.PaymentRepo)(nil)
)
