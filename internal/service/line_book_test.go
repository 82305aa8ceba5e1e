package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/cafe-pos/internal/model"
)

func openOrder(t *testing.T, s *memStore) model.Order {
	t.Helper()
	tableID := s.addTable("A1")
	o, err := newManager(s).EnsureOpenOrder(context.Background(), tableID)
	require.NoError(t, err)
	return o
}

func TestAddItemMergesRepeatAdditions(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	ctx := context.Background()

	first, err := book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Quantity)
	assert.EqualValues(t, 20000, first.Amount)

	second, err := book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeat additions merge into one line")
	assert.EqualValues(t, 2, second.Quantity)
	assert.EqualValues(t, 40000, second.Amount)

	lines, err := book.Lines(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	ctx := context.Background()

	_, err := book.AddItem(ctx, o.ID, 7, "  ", 20000)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = book.AddItem(ctx, o.ID, 7, "Cà phê đen", 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = book.AddItem(ctx, o.ID, 7, "Cà phê đen", -500)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddItemConcurrentTapsYieldOneLine(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})

	const k = 25
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := book.AddItem(context.Background(), o.ID, 7, "Trà đá", 5000)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := book.Lines(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.EqualValues(t, k, lines[0].Quantity)
	assert.EqualValues(t, int64(k)*5000, lines[0].Amount)
}

func TestChangeQuantityDeletesAtZero(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	ctx := context.Background()

	ln, err := book.AddItem(ctx, o.ID, 7, "Bạc xỉu", 25000)
	require.NoError(t, err)

	_, removed, err := book.ChangeQuantity(ctx, ln.ID, -1)
	require.NoError(t, err)
	assert.True(t, removed)

	// The line is gone; a second decrement resolves to a no-op.
	_, removed, err = book.ChangeQuantity(ctx, ln.ID, -1)
	require.NoError(t, err)
	assert.True(t, removed)

	lines, err := book.Lines(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestChangeQuantityRecomputesAmount(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	ctx := context.Background()

	ln, err := book.AddItem(ctx, o.ID, 7, "Cà phê sữa", 22000)
	require.NoError(t, err)

	got, removed, err := book.ChangeQuantity(ctx, ln.ID, 3)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.EqualValues(t, 4, got.Quantity)
	assert.EqualValues(t, 88000, got.Amount)

	got, removed, err = book.ChangeQuantity(ctx, ln.ID, -2)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.EqualValues(t, 2, got.Quantity)
	assert.EqualValues(t, 44000, got.Amount)
}

func TestChangeQuantityRejectsZeroDelta(t *testing.T) {
	s := newMemStore()
	book := NewLineBook(memLines{s})

	_, _, err := book.ChangeQuantity(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTotalIsRederivedFromLines(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	ctx := context.Background()

	total, err := book.Total(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)
	ln, err := book.AddItem(ctx, o.ID, 8, "Trà đá", 5000)
	require.NoError(t, err)
	_, err = book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)

	total, err = book.Total(ctx, o.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 45000, total)

	_, _, err = book.ChangeQuantity(ctx, ln.ID, -1)
	require.NoError(t, err)
	total, err = book.Total(ctx, o.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 40000, total)

	// Re-deriving twice in a row changes nothing.
	again, err := book.Total(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, total, again)
}
