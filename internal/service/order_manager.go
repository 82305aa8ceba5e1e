package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// ensureAttempts bounds the find/insert loop. One conflict is resolved
// by the following re-read, so hitting the bound means the open order
// was created and paid between our read and our insert, repeatedly.
const ensureAttempts = 3

// OrderManager guarantees that a table has at most one open order and
// hands that order to every caller. The guarantee does not come from
// the lookup: it comes from the store's conditional insert, which only
// one concurrent caller can win. Everyone else re-reads the winner.
type OrderManager struct {
	tables TableStore
	orders OrderStore
}

// NewOrderManager constructs an OrderManager over the given stores.
func NewOrderManager(tables TableStore, orders OrderStore) *OrderManager {
	return &OrderManager{tables: tables, orders: orders}
}

// EnsureOpenOrder returns the table's current open order, creating one
// when none exists. Concurrent calls for the same table all resolve to
// the same order. The table's name is snapshotted onto a newly created
// order. Returns repository.ErrNotFound for an unknown table and
// ErrRetryExhausted when repeated races prevent convergence.
func (s *OrderManager) EnsureOpenOrder(ctx context.Context, tableID uint64) (model.Order, error) {
	t, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return model.Order{}, err
	}

	for attempt := 0; attempt < ensureAttempts; attempt++ {
		o, found, err := s.orders.FindOpen(ctx, tableID)
		if err != nil {
			return model.Order{}, fmt.Errorf("find open order: %w", err)
		}
		if found {
			return o, nil
		}

		o, err = s.orders.InsertOpen(ctx, tableID, t.Name)
		if err == nil {
			return o, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			// Lost the race; the next iteration reads the winner.
			continue
		}
		return model.Order{}, fmt.Errorf("insert open order: %w", err)
	}
	return model.Order{}, ErrRetryExhausted
}

// GetOrder fetches an order by ID.
func (s *OrderManager) GetOrder(ctx context.Context, orderID uint64) (model.Order, error) {
	return s.orders.Get(ctx, orderID)
}
