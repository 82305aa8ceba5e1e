package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// TestCheckoutSettlesOrderAndFreesTable walks the whole service
// episode: seat guests, build an order line by line, then pay cash.
func TestCheckoutSettlesOrderAndFreesTable(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	reg := NewTableRegistry(memTables{s})
	mgr := newManager(s)
	book := NewLineBook(memLines{s})
	fin := NewPaymentFinalizer(memCheckout{s})
	ctx := context.Background()

	_, err := reg.Occupy(ctx, tableID)
	require.NoError(t, err)
	o, err := mgr.EnsureOpenOrder(ctx, tableID)
	require.NoError(t, err)

	_, err = book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)
	ln, err := book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)
	assert.EqualValues(t, 2, ln.Quantity)
	assert.EqualValues(t, 40000, ln.Amount)

	_, removed, err := book.ChangeQuantity(ctx, ln.ID, -1)
	require.NoError(t, err)
	assert.False(t, removed)

	p, err := fin.Finalize(ctx, o.ID, "cash")
	require.NoError(t, err)
	assert.Equal(t, model.PayCash, p.Method)
	assert.EqualValues(t, 20000, p.PaidAmount)

	paid, err := mgr.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, paid.Status)

	tb, err := memTables{s}.Get(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, model.TableEmpty, tb.Status)
}

func TestFinalizeRejectsEmptyOrder(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	fin := NewPaymentFinalizer(memCheckout{s})

	_, err := fin.Finalize(context.Background(), o.ID, model.PayTransfer)
	assert.ErrorIs(t, err, repository.ErrEmptyOrder)

	got, err := memOrders{s}.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderOpen, got.Status, "a failed checkout leaves the order open")
}

func TestFinalizeUnknownOrder(t *testing.T) {
	s := newMemStore()
	fin := NewPaymentFinalizer(memCheckout{s})

	_, err := fin.Finalize(context.Background(), 404, model.PayCash)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFinalizeRejectsUnknownMethod(t *testing.T) {
	s := newMemStore()
	fin := NewPaymentFinalizer(memCheckout{s})

	_, err := fin.Finalize(context.Background(), 1, "card")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFinalizeDoubleSubmit(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	fin := NewPaymentFinalizer(memCheckout{s})
	ctx := context.Background()

	_, err := book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)

	_, err = fin.Finalize(ctx, o.ID, model.PayCash)
	require.NoError(t, err)
	_, err = fin.Finalize(ctx, o.ID, model.PayCash)
	assert.ErrorIs(t, err, repository.ErrAlreadyPaid)
}

func TestFinalizeConcurrentSubmitsHaveOneWinner(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	fin := NewPaymentFinalizer(memCheckout{s})

	_, err := book.AddItem(context.Background(), o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fin.Finalize(context.Background(), o.ID, model.PayCash)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, repository.ErrAlreadyPaid)
		}
	}
	assert.Equal(t, 1, wins, "exactly one submit settles the order")
	assert.Len(t, s.payments, 1)
}

func TestFinalizeFailureIsRetryable(t *testing.T) {
	s := newMemStore()
	o := openOrder(t, s)
	book := NewLineBook(memLines{s})
	fin := NewPaymentFinalizer(memCheckout{s})
	ctx := context.Background()

	_, err := book.AddItem(ctx, o.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)

	boom := errors.New("deadlock victim")
	s.finalizeHook = func() error { return boom }
	_, err = fin.Finalize(ctx, o.ID, model.PayCash)
	assert.ErrorIs(t, err, boom)

	got, err := memOrders{s}.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderOpen, got.Status)

	s.finalizeHook = nil
	p, err := fin.Finalize(ctx, o.ID, model.PayCash)
	require.NoError(t, err)
	assert.EqualValues(t, 20000, p.PaidAmount)
}
