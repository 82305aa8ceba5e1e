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

func newManager(s *memStore) *OrderManager {
	return NewOrderManager(memTables{s}, memOrders{s})
}

func TestEnsureOpenOrderCreatesAndSnapshotsName(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	m := newManager(s)

	o, err := m.EnsureOpenOrder(context.Background(), tableID)
	require.NoError(t, err)
	assert.Equal(t, tableID, o.TableID)
	assert.Equal(t, "A1", o.TableName)
	assert.Equal(t, model.OrderOpen, o.Status)
}

func TestEnsureOpenOrderIsIdempotent(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	m := newManager(s)

	first, err := m.EnsureOpenOrder(context.Background(), tableID)
	require.NoError(t, err)
	second, err := m.EnsureOpenOrder(context.Background(), tableID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureOpenOrderUnknownTable(t *testing.T) {
	s := newMemStore()
	m := newManager(s)

	_, err := m.EnsureOpenOrder(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEnsureOpenOrderConcurrentCallersShareOneOrder(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	m := newManager(s)

	const n = 32
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := m.EnsureOpenOrder(context.Background(), tableID)
			if assert.NoError(t, err) {
				ids[i] = o.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "every caller must observe the same order")
	}
	assert.Len(t, s.orders, 1)
}

func TestEnsureOpenOrderGivesUpAfterRepeatedConflicts(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	// Simulate an open order that is always created and paid between
	// our read and our insert.
	s.insertOpenHook = func() error { return repository.ErrConflict }
	m := newManager(s)

	_, err := m.EnsureOpenOrder(context.Background(), tableID)
	assert.ErrorIs(t, err, ErrRetryExhausted)
}

func TestEnsureOpenOrderDoesNotRetryStoreOutages(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	boom := errors.New("connection refused")
	calls := 0
	s.insertOpenHook = func() error { calls++; return boom }
	m := newManager(s)

	_, err := m.EnsureOpenOrder(context.Background(), tableID)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "a store outage must surface immediately")
}

func TestEnsureOpenOrderStartsFreshEpisodeAfterPayment(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("A1")
	m := newManager(s)
	book := NewLineBook(memLines{s})
	fin := NewPaymentFinalizer(memCheckout{s})
	ctx := context.Background()

	first, err := m.EnsureOpenOrder(ctx, tableID)
	require.NoError(t, err)
	_, err = book.AddItem(ctx, first.ID, 7, "Cà phê đen", 20000)
	require.NoError(t, err)
	_, err = fin.Finalize(ctx, first.ID, model.PayCash)
	require.NoError(t, err)

	second, err := m.EnsureOpenOrder(ctx, tableID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "a paid order never reopens")
}
