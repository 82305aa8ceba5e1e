package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// LineBook maintains the line items of an order: one line per distinct
// item, quantities merged on repeat additions, lines removed when the
// quantity reaches zero. Totals are re-derived from the lines on every
// read; there is no running total anywhere that could drift.
type LineBook struct {
	lines LineStore
}

// NewLineBook constructs a LineBook over the given store.
func NewLineBook(lines LineStore) *LineBook {
	return &LineBook{lines: lines}
}

// AddItem adds one unit of an item to an open order, merging into the
// existing line when the item is already on the order. Prices are in
// the smallest currency unit and must be positive; the item name is
// snapshotted onto the line. Safe to retry: a replayed call simply
// increments once more, exactly what a second tap means.
func (s *LineBook) AddItem(ctx context.Context, orderID, itemID uint64, itemName string, unitPrice int64) (model.OrderLine, error) {
	if strings.TrimSpace(itemName) == "" {
		return model.OrderLine{}, fmt.Errorf("%w: item name is empty", ErrValidation)
	}
	if unitPrice <= 0 {
		return model.OrderLine{}, fmt.Errorf("%w: unit price must be positive", ErrValidation)
	}

	for attempt := 0; attempt < ensureAttempts; attempt++ {
		ln, err := s.lines.UpsertIncrement(ctx, orderID, itemID, itemName, unitPrice)
		if err == nil {
			return ln, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		return model.OrderLine{}, err
	}
	return model.OrderLine{}, ErrRetryExhausted
}

// ChangeQuantity applies a delta to a line. A resulting quantity of
// zero or below deletes the line, reported via removed=true. A line
// that no longer exists (a concurrent decrement beat us to the delete)
// also reports removed=true rather than an error; from the caller's
// point of view there is nothing left to do either way. Unlike AddItem
// this is not retried internally: replaying a delta without re-reading
// state would double-apply it.
func (s *LineBook) ChangeQuantity(ctx context.Context, lineID uint64, delta int64) (model.OrderLine, bool, error) {
	if delta == 0 {
		return model.OrderLine{}, false, fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}
	ln, deleted, err := s.lines.Adjust(ctx, lineID, delta)
	if errors.Is(err, repository.ErrNotFound) {
		return model.OrderLine{}, true, nil
	}
	if err != nil {
		return model.OrderLine{}, false, err
	}
	return ln, deleted, nil
}

// Lines returns the order's current lines.
func (s *LineBook) Lines(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	return s.lines.ListByOrder(ctx, orderID)
}

// Total sums the amounts of the order's current lines. An order with
// no lines totals zero.
func (s *LineBook) Total(ctx context.Context, orderID uint64) (int64, error) {
	lines, err := s.lines.ListByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, ln := range lines {
		total += ln.Amount
	}
	return total, nil
}
